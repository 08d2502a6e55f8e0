package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/cache"
	"github.com/Belphemur/Subtirrent/internal/client"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

const (
	// sizeTolerance is the relative size difference accepted when matching files.
	sizeTolerance = 0.01

	defaultLocatorCacheSize = 100
	defaultLocatorCacheTTL  = 15 * time.Minute
)

// DebridMediaLocator implements MediaLocator on top of the debrid account API.
type DebridMediaLocator struct {
	debrid client.DebridClient
	cache  cache.Cache
	now    func() time.Time
}

// NewMediaLocator creates a locator. results caches resolved media by hint and size;
// it may be nil to disable caching.
func NewMediaLocator(debrid client.DebridClient, results cache.Cache) *DebridMediaLocator {
	return &DebridMediaLocator{debrid: debrid, cache: results, now: time.Now}
}

// OpenMediaLocator creates a locator with the in-memory result cache configured by
// cfg.LocatorCache.
func OpenMediaLocator(cfg *config.Config, debrid client.DebridClient) (*DebridMediaLocator, error) {
	size := cfg.LocatorCache.Size
	if size <= 0 {
		size = defaultLocatorCacheSize
	}
	results, err := cache.New("memory", cache.ProviderConfig{
		Size:  size,
		TTL:   config.ParseDuration("locator_cache.ttl", cfg.LocatorCache.TTL, defaultLocatorCacheTTL),
		Group: "locator",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create locator cache: %w", err)
	}
	return NewMediaLocator(debrid, results), nil
}

// Close releases the result cache.
func (l *DebridMediaLocator) Close() error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Close()
}

// ResolveStreamURL implements MediaLocator.
func (l *DebridMediaLocator) ResolveStreamURL(ctx context.Context, apiKey string, expectedSize int64, filenameHint string) (*models.ResolvedMedia, error) {
	logger := config.GetLogger()
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.NewValidationError("apiKey", "must not be empty")
	}
	if expectedSize <= 0 {
		return nil, apperrors.NewValidationError("sizeHint", "must be positive")
	}

	key := locatorCacheKey(apiKey, filenameHint, expectedSize)
	if cached, ok := l.cached(key); ok {
		logger.Debug().Str("filename", cached.Filename).Int64("size", expectedSize).Msg("Media location served from cache")
		return cached, nil
	}

	downloads, err := l.debrid.ListMagnets(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list debrid downloads: %w", err)
	}

	file, ok := SelectFile(downloads, expectedSize, l.now())
	if !ok {
		logger.Debug().Int("downloads", len(downloads)).Int64("size", expectedSize).Msg("No debrid file matches the expected size")
		return nil, apperrors.NewNotFoundError("media file", expectedSize)
	}

	media, err := l.debrid.UnlockLink(ctx, apiKey, file.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock %s: %w", file.Filename, err)
	}
	resolved := &models.ResolvedMedia{URL: media.URL, Filename: file.Filename}

	logger.Info().
		Str("filename", file.Filename).
		Int64("fileSize", file.SizeBytes).
		Int64("expectedSize", expectedSize).
		Msg("Located media file")

	l.store(key, resolved)
	return resolved, nil
}

// SelectFile picks the file to stream among all Ready downloads. A file qualifies when
// its size is within 1% of expectedSize. Among qualifying files the one whose download
// completed closest to now wins; a download without a completion time counts as
// completed now. Ties keep the earliest file in listing order.
func SelectFile(downloads []models.DebridDownload, expectedSize int64, now time.Time) (models.DebridFile, bool) {
	var (
		best     models.DebridFile
		bestDiff time.Duration
		found    bool
	)
	tolerance := float64(expectedSize) * sizeTolerance

	for _, download := range downloads {
		if !download.IsReady() {
			continue
		}
		age := completionDistance(download, now)
		for _, file := range download.Files {
			if !withinTolerance(file.SizeBytes, expectedSize, tolerance) {
				continue
			}
			if !found || age < bestDiff {
				best, bestDiff, found = file, age, true
			}
		}
	}
	return best, found
}

func withinTolerance(size, expected int64, tolerance float64) bool {
	diff := size - expected
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) <= tolerance
}

func completionDistance(download models.DebridDownload, now time.Time) time.Duration {
	if download.CompletedAt == nil {
		return 0
	}
	d := now.Sub(*download.CompletedAt)
	if d < 0 {
		d = -d
	}
	return d
}

// Forget implements MediaLocator.
func (l *DebridMediaLocator) Forget(apiKey string, expectedSize int64, filenameHint string) {
	if l.cache == nil {
		return
	}
	l.cache.Delete(locatorCacheKey(apiKey, filenameHint, expectedSize))
}

// locatorCacheKey scopes a location to the account that unlocked it. The API key is
// hashed so it never appears in cache keys.
func locatorCacheKey(apiKey, hint string, size int64) string {
	sum := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%s|%s|%d", hex.EncodeToString(sum[:8]), hint, size)
}

func (l *DebridMediaLocator) cached(key string) (*models.ResolvedMedia, bool) {
	if l.cache == nil {
		return nil, false
	}
	data, ok := l.cache.Get(key)
	if !ok {
		return nil, false
	}
	var media models.ResolvedMedia
	if err := json.Unmarshal(data, &media); err != nil {
		return nil, false
	}
	return &media, true
}

func (l *DebridMediaLocator) store(key string, media *models.ResolvedMedia) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(media)
	if err != nil {
		return
	}
	l.cache.Set(key, data)
}
