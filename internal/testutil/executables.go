package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// WriteStubExecutable writes a /bin/sh script named name into a temporary directory
// and returns its path. The test is skipped on platforms without a POSIX shell.
func WriteStubExecutable(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write stub executable: %v", err)
	}
	return path
}
