package services

import (
	"context"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// StreamFinder turns a catalog item into a playable debrid stream.
type StreamFinder interface {
	FindStreams(ctx context.Context, userConfig models.UserConfig, contentType, id string) ([]models.Stream, error)
}
