package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Belphemur/Subtirrent/internal/cache"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

const (
	defaultStoreSize = 100
	defaultStoreTTL  = 30 * time.Minute
)

// SubtitleStore holds resolved subtitle references between a resolution and the
// extractions that follow it. Entries expire after TTL without access.
type SubtitleStore interface {
	// Put inserts or overwrites the record stored under id and restarts its TTL.
	Put(id string, record models.CachedSubtitle) error
	// Get returns a copy of the record and extends its TTL, or false on a miss.
	Get(id string) (*models.CachedSubtitle, bool)
	Stats() models.CacheStats
	Close() error
}

type cacheSubtitleStore struct {
	cache cache.Cache
	max   int
	ttl   time.Duration
	now   func() time.Time
}

// NewSubtitleStore wraps c, which must have been created with ProviderConfig.Sliding so
// that reads extend the entry lifetime. max and ttl are reported by Stats.
func NewSubtitleStore(c cache.Cache, max int, ttl time.Duration) SubtitleStore {
	return &cacheSubtitleStore{cache: c, max: max, ttl: ttl, now: time.Now}
}

// OpenSubtitleStore creates the subtitle store configured by cfg.Cache.
func OpenSubtitleStore(cfg *config.Config) (SubtitleStore, error) {
	logger := config.GetLogger()
	size := cfg.Cache.Size
	if size <= 0 {
		size = defaultStoreSize
	}
	ttl := config.ParseDuration("cache.ttl", cfg.Cache.TTL, defaultStoreTTL)
	provider := cfg.Cache.Provider
	if provider == "" {
		provider = "memory"
	}

	c, err := cache.New(provider, cache.ProviderConfig{
		Size:          size,
		TTL:           ttl,
		Sliding:       true,
		Group:         "subtitles",
		Logger:        cache.NewZerologLogger(logger, "subtitles"),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subtitle cache: %w", err)
	}

	logger.Info().Str("provider", provider).Int("size", size).Dur("ttl", ttl).Msg("Subtitle store ready")
	return NewSubtitleStore(c, size, ttl), nil
}

func (s *cacheSubtitleStore) Put(id string, record models.CachedSubtitle) error {
	record.SubtitleID = id
	record.LastAccessed = s.now()
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cached subtitle %s: %w", id, err)
	}
	s.cache.Set(id, data)
	return nil
}

// Get decodes the stored record. The TTL refresh happens inside the cache, so the stored
// bytes are not rewritten; the returned copy carries the access time instead.
func (s *cacheSubtitleStore) Get(id string) (*models.CachedSubtitle, bool) {
	data, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	var record models.CachedSubtitle
	if err := json.Unmarshal(data, &record); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("subtitleId", id).Msg("Discarding undecodable cached subtitle")
		return nil, false
	}
	record.LastAccessed = s.now()
	return &record, true
}

func (s *cacheSubtitleStore) Stats() models.CacheStats {
	return models.CacheStats{Size: s.cache.Len(), Max: s.max, TTL: s.ttl}
}

func (s *cacheSubtitleStore) Close() error {
	return s.cache.Close()
}
