package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache is an in-process Cache over the expirable LRU.
//
// The expirable LRU never extends an expiry on read, so a sliding cache re-adds the value
// on every hit. mu serializes that read-then-write with Set and Delete; a concurrent Set
// would otherwise be overwritten by the value being refreshed.
type memoryCache struct {
	mu      sync.Mutex
	entries *lru.LRU[string, []byte]
	sliding bool
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	var onEvict func(string, []byte)
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) { cfg.OnEvict(key, value) }
	}
	return &memoryCache{
		entries: lru.NewLRU[string, []byte](cfg.Size, onEvict, cfg.TTL),
		sliding: cfg.Sliding,
	}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	if !m.sliding {
		return m.entries.Get(key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries.Get(key)
	if ok {
		// Add on an existing key resets the expiry and does not fire onEvict.
		m.entries.Add(key, value)
	}
	return value, ok
}

func (m *memoryCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Add(key, value)
}

// Delete removes key. The expirable LRU reports removals through onEvict, so explicit
// deletes show up as evictions in metrics.
func (m *memoryCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Remove(key)
}

func (m *memoryCache) Len() int {
	return m.entries.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
