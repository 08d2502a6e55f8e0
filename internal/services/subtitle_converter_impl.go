package services

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

const defaultConvertTimeout = 10 * time.Minute

// FFmpegConverter implements SubtitleConverter by running ffmpeg with its output on a pipe.
type FFmpegConverter struct {
	path    string
	timeout time.Duration
}

// NewFFmpegConverter creates a converter using the ffmpeg binary at path.
// timeout bounds the lifetime of one conversion process; non-positive means 10 minutes.
func NewFFmpegConverter(path string, timeout time.Duration) SubtitleConverter {
	if path == "" {
		path = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = defaultConvertTimeout
	}
	return &FFmpegConverter{path: path, timeout: timeout}
}

// Convert implements SubtitleConverter.
func (c *FFmpegConverter) Convert(ctx context.Context, sourceURL string, trackIndex int, format models.OutputFormat) (io.ReadCloser, error) {
	codec := format.Codec()
	if strings.TrimSpace(sourceURL) == "" || trackIndex < 0 {
		return nil, &apperrors.ErrConversion{
			TrackIndex: trackIndex,
			Format:     codec,
			Err:        apperrors.NewValidationError("source", "missing stream URL or track index"),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	stderr := newLimitedBuffer(stderrLimit)
	cmd := exec.CommandContext(ctx, c.path,
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", sourceURL,
		"-map", fmt.Sprintf("0:%d", trackIndex),
		"-c:s", codec,
		"-f", codec,
		"pipe:1",
	)
	cmd.Stderr = stderr
	cmd.WaitDelay = 2 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &apperrors.ErrConversion{TrackIndex: trackIndex, Format: codec, Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &apperrors.ErrConversion{TrackIndex: trackIndex, Format: codec, Err: err}
	}

	logger := config.GetLogger()
	logger.Debug().Int("pid", cmd.Process.Pid).Int("track", trackIndex).Str("codec", codec).Msg("Started subtitle conversion")

	return &conversionStream{
		ctx:        ctx,
		cancel:     cancel,
		cmd:        cmd,
		stdout:     stdout,
		stderr:     stderr,
		trackIndex: trackIndex,
		codec:      codec,
	}, nil
}

// conversionStream is the stdout of a running conversion. Reaching EOF reaps the
// process and turns a non-zero exit into an error; Close kills it if still running.
type conversionStream struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	stderr     *limitedBuffer
	trackIndex int
	codec      string

	waitOnce sync.Once
	waitErr  error
	closed   bool
}

func (s *conversionStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if err == io.EOF {
		if werr := s.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// Close terminates the process if it has not exited and releases its resources.
// The exit status of an aborted conversion is not reported.
func (s *conversionStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	_ = s.wait()
	return nil
}

func (s *conversionStream) wait() error {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()
		if err == nil {
			return
		}
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		s.waitErr = &apperrors.ErrConversion{
			TrackIndex: s.trackIndex,
			Format:     s.codec,
			Stderr:     s.stderr.String(),
			Err:        err,
		}
	})
	return s.waitErr
}
