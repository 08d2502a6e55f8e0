package services

import (
	"context"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// TrackProber enumerates the streams of a remote media resource without downloading it.
type TrackProber interface {
	// Probe returns every stream of the resource, not only subtitles, in the order the
	// probing tool reported them. Failures are *apperrors.ErrProbe.
	Probe(ctx context.Context, streamURL string) ([]models.MediaStream, error)
}
