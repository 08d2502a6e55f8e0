package services

import (
	"context"
	"io"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// SubtitleConverter extracts one track of a remote resource and transcodes it to a
// subtitle format.
type SubtitleConverter interface {
	// Convert starts the conversion and returns its output as it is produced.
	// Closing the returned reader terminates the conversion if it is still running.
	// Cancelling ctx has the same effect. Start and mid-stream failures are
	// *apperrors.ErrConversion.
	Convert(ctx context.Context, sourceURL string, trackIndex int, format models.OutputFormat) (io.ReadCloser, error)
}
