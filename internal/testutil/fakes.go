package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// FakeProber returns canned streams instead of running the probing tool.
type FakeProber struct {
	mu      sync.Mutex
	Streams []models.MediaStream
	Err     error
	URLs    []string
}

// Probe records the URL and returns the configured streams or error.
func (f *FakeProber) Probe(ctx context.Context, streamURL string) ([]models.MediaStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.URLs = append(f.URLs, streamURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.MediaStream(nil), f.Streams...), nil
}

// Calls returns how many times Probe was invoked.
func (f *FakeProber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.URLs)
}

// ConvertCall captures the arguments of one FakeConverter.Convert invocation.
type ConvertCall struct {
	SourceURL  string
	TrackIndex int
	Format     models.OutputFormat
}

// FakeConverter returns Output for every conversion, or Err when set.
type FakeConverter struct {
	mu     sync.Mutex
	Output string
	Err    error
	calls  []ConvertCall
	closed int
}

// Convert records the call and returns a reader over Output.
func (f *FakeConverter) Convert(ctx context.Context, sourceURL string, trackIndex int, format models.OutputFormat) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ConvertCall{SourceURL: sourceURL, TrackIndex: trackIndex, Format: format})
	if f.Err != nil {
		return nil, f.Err
	}
	return &fakeStream{Reader: strings.NewReader(f.Output), onClose: f.markClosed}, nil
}

// Calls returns a copy of every recorded conversion.
func (f *FakeConverter) Calls() []ConvertCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ConvertCall(nil), f.calls...)
}

// Closed returns how many returned streams have been closed.
func (f *FakeConverter) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeConverter) markClosed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

type fakeStream struct {
	io.Reader
	onClose func()
}

func (s *fakeStream) Close() error {
	s.onClose()
	return nil
}

// FakeDebrid serves a fixed download listing and unlocks links through Links.
type FakeDebrid struct {
	mu        sync.Mutex
	Downloads []models.DebridDownload
	// Links maps a file link handle to its direct URL.
	Links     map[string]string
	ListErr   error
	UnlockErr error
	listCalls int
	unlocked  []string
}

// ListMagnets returns the configured downloads.
func (f *FakeDebrid) ListMagnets(ctx context.Context, apiKey string) ([]models.DebridDownload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Downloads, nil
}

// UnlockLink maps link through Links; unknown links unlock to themselves.
func (f *FakeDebrid) UnlockLink(ctx context.Context, apiKey, link string) (*models.ResolvedMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocked = append(f.unlocked, link)
	if f.UnlockErr != nil {
		return nil, f.UnlockErr
	}
	direct, ok := f.Links[link]
	if !ok {
		direct = link
	}
	return &models.ResolvedMedia{URL: direct}, nil
}

// ListCalls returns how many times the listing was requested.
func (f *FakeDebrid) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// Unlocked returns every link handle passed to UnlockLink.
func (f *FakeDebrid) Unlocked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.unlocked...)
}
