package services

import (
	"context"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// MediaLocator finds a media file in the user's debrid account and unlocks it.
type MediaLocator interface {
	// ResolveStreamURL returns the direct stream URL of the Ready file whose size is within
	// 1% of expectedSize. filenameHint only participates in result caching.
	ResolveStreamURL(ctx context.Context, apiKey string, expectedSize int64, filenameHint string) (*models.ResolvedMedia, error)

	// Forget drops the account's cached location for expectedSize and filenameHint so
	// the next call asks the debrid service again.
	Forget(apiKey string, expectedSize int64, filenameHint string)
}
