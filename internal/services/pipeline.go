package services

import (
	"context"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// Pipeline composes media location, probing, caching and conversion into the two
// operations served to clients.
type Pipeline interface {
	// ResolveSubtitles lists the embedded subtitles of the requested media. It never
	// fails: invalid input and every upstream, probe or lookup failure yield an empty list.
	ResolveSubtitles(ctx context.Context, req models.ResolveRequest) models.SubtitlesResponse

	// ExtractSubtitle streams a subtitle previously returned by ResolveSubtitles.
	// Unknown or expired ids fail with *apperrors.ErrNotFound, tool failures with
	// *apperrors.ErrConversion.
	ExtractSubtitle(ctx context.Context, subtitleID string) (*models.SubtitleStream, error)

	// Stats reports the subtitle store occupancy.
	Stats() models.CacheStats
}
