package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/testutil"
)

func TestFFprobeProber_Probe(t *testing.T) {
	t.Parallel()
	argsFile := filepath.Join(t.TempDir(), "args")
	script := "echo \"$@\" > " + argsFile + "\ncat <<'JSON'\n" + testutil.EpisodeFFprobeJSON + "\nJSON"
	path := testutil.WriteStubExecutable(t, "ffprobe", script)

	prober := NewFFprobeProber(path, 5*time.Second)
	streams, err := prober.Probe(context.Background(), testutil.EpisodeURL)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if len(streams) != 4 {
		t.Fatalf("Expected 4 streams, got %d", len(streams))
	}
	if !streams[2].IsSubtitle() || streams[2].Language != "eng" || streams[2].Title != "English" {
		t.Errorf("Unexpected first subtitle stream: %+v", streams[2])
	}
	if streams[3].Index != 3 || streams[3].Language != "por" {
		t.Errorf("Expected upper-case tag keys to be read, got %+v", streams[3])
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("Failed to read recorded args: %v", err)
	}
	want := "-v error -hide_banner -show_streams -of json -i " + testutil.EpisodeURL
	if got := strings.TrimSpace(string(args)); got != want {
		t.Errorf("ffprobe args = %q, want %q", got, want)
	}
}

func TestFFprobeProber_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		script     string
		url        string
		timeout    time.Duration
		wantStderr string
		wantCause  error
	}{
		{
			name:       "non-zero exit",
			script:     "echo 'Invalid data found when processing input' >&2\nexit 1",
			url:        testutil.EpisodeURL,
			timeout:    5 * time.Second,
			wantStderr: "Invalid data found when processing input",
		},
		{
			name:    "malformed output",
			script:  "echo 'not json'",
			url:     testutil.EpisodeURL,
			timeout: 5 * time.Second,
		},
		{
			name:    "missing streams field",
			script:  "echo '{\"format\": {}}'",
			url:     testutil.EpisodeURL,
			timeout: 5 * time.Second,
		},
		{
			name:      "timeout",
			script:    "exec sleep 10",
			url:       testutil.EpisodeURL,
			timeout:   100 * time.Millisecond,
			wantCause: context.DeadlineExceeded,
		},
		{
			name:    "empty url",
			script:  "exit 0",
			url:     "  ",
			timeout: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := testutil.WriteStubExecutable(t, "ffprobe", tt.script)
			prober := NewFFprobeProber(path, tt.timeout)

			start := time.Now()
			_, err := prober.Probe(context.Background(), tt.url)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if time.Since(start) > 5*time.Second {
				t.Errorf("Probe took too long to fail: %v", time.Since(start))
			}

			var probeErr *apperrors.ErrProbe
			if !errors.As(err, &probeErr) {
				t.Fatalf("Expected *apperrors.ErrProbe, got %T: %v", err, err)
			}
			if tt.wantStderr != "" && probeErr.Stderr != tt.wantStderr {
				t.Errorf("Stderr = %q, want %q", probeErr.Stderr, tt.wantStderr)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("Expected error to wrap %v, got %v", tt.wantCause, err)
			}
		})
	}
}

func TestFFprobeProber_MissingBinary(t *testing.T) {
	t.Parallel()
	prober := NewFFprobeProber(filepath.Join(t.TempDir(), "missing-ffprobe"), time.Second)
	_, err := prober.Probe(context.Background(), testutil.EpisodeURL)
	if !errors.Is(err, &apperrors.ErrProbe{}) {
		t.Fatalf("Expected ErrProbe for a missing binary, got %v", err)
	}
}

func TestLimitedBuffer(t *testing.T) {
	t.Parallel()
	b := newLimitedBuffer(5)
	n, err := b.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatalf("Write = (%d, %v)", n, err)
	}
	n, _ = b.Write([]byte("defgh"))
	if n != 5 {
		t.Errorf("Expected the full length to be reported, got %d", n)
	}
	if got := b.String(); got != "abcde" {
		t.Errorf("String() = %q, want %q", got, "abcde")
	}
}
