package services

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/metrics"
	"github.com/Belphemur/Subtirrent/internal/models"
	"github.com/Belphemur/Subtirrent/internal/parser"
)

const (
	defaultProbeTimeout = 60 * time.Second
	// stderrLimit caps how much diagnostic output of the external tools is kept.
	stderrLimit = 4096
)

// FFprobeProber implements TrackProber by running ffprobe against the stream URL.
// ffprobe performs ranged reads over HTTP, so only the container headers are fetched.
type FFprobeProber struct {
	path    string
	timeout time.Duration
	parser  parser.Parser[[]models.MediaStream]
}

// NewFFprobeProber creates a prober using the ffprobe binary at path.
// A non-positive timeout falls back to 60 seconds.
func NewFFprobeProber(path string, timeout time.Duration) TrackProber {
	if path == "" {
		path = "ffprobe"
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &FFprobeProber{
		path:    path,
		timeout: timeout,
		parser:  parser.NewFFprobeParser(),
	}
}

// Probe implements TrackProber.
func (p *FFprobeProber) Probe(ctx context.Context, streamURL string) ([]models.MediaStream, error) {
	logger := config.GetLogger()
	if strings.TrimSpace(streamURL) == "" {
		return nil, &apperrors.ErrProbe{Err: apperrors.NewValidationError("streamUrl", "must not be empty")}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stdout bytes.Buffer
	stderr := newLimitedBuffer(stderrLimit)
	cmd := exec.CommandContext(ctx, p.path,
		"-v", "error",
		"-hide_banner",
		"-show_streams",
		"-of", "json",
		"-i", streamURL,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	metrics.ProbeDuration.Observe(elapsed.Seconds())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		logger.Debug().Err(err).Dur("elapsed", elapsed).Msg("ffprobe failed")
		return nil, &apperrors.ErrProbe{URL: streamURL, Stderr: stderr.String(), Err: err}
	}

	streams, err := p.parser.Parse(&stdout)
	if err != nil {
		return nil, &apperrors.ErrProbe{URL: streamURL, Stderr: stderr.String(), Err: err}
	}

	logger.Debug().Int("streams", len(streams)).Dur("elapsed", elapsed).Msg("Probed media streams")
	return streams, nil
}

// limitedBuffer keeps the first limit bytes written to it and silently drops the rest,
// so a chatty process can never block on or exhaust its stderr pipe.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func newLimitedBuffer(limit int) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

// String returns the captured output with surrounding whitespace removed.
// It must only be called after the process has been waited for.
func (b *limitedBuffer) String() string {
	return strings.TrimSpace(b.buf.String())
}

