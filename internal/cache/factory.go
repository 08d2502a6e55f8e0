package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig configures a cache instance.
type ProviderConfig struct {
	// Size is the maximum number of entries.
	Size int

	// TTL is the entry lifetime, or the idle timeout when Sliding is set.
	TTL time.Duration

	// Sliding restarts an entry's TTL on every hit.
	Sliding bool

	// KeyPrefix namespaces keys on shared backends. Defaults to "subtirrent:".
	KeyPrefix string

	OnEvict EvictCallback

	// Logger receives backend errors. Nil drops them.
	Logger Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group labels the cache in metrics and in redis key names. An empty Group
	// disables instrumentation.
	Group string
}

func (cfg ProviderConfig) validate() error {
	if cfg.Size <= 0 {
		return fmt.Errorf("cache: size must be positive, got %d", cfg.Size)
	}
	if cfg.TTL <= 0 {
		return fmt.Errorf("cache: ttl must be positive, got %s", cfg.TTL)
	}
	return nil
}

// Provider builds a Cache from a validated config.
type Provider func(cfg ProviderConfig) (Cache, error)

var registry = struct {
	sync.RWMutex
	providers map[string]Provider
}{providers: make(map[string]Provider)}

// Register makes a provider available to New. It panics on a nil provider or a
// duplicate name, both of which are programming errors caught at init.
func Register(name string, p Provider) {
	registry.Lock()
	defer registry.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := registry.providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	registry.providers[name] = p
}

// New builds a cache with the named provider ("memory" or "redis"). A non-empty
// cfg.Group wraps it with Prometheus instrumentation.
func New(name string, cfg ProviderConfig) (Cache, error) {
	registry.RLock()
	provider, ok := registry.providers[name]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Group == "" {
		return provider(cfg)
	}

	group, onEvict := cfg.Group, cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, value)
		}
	}

	inner, err := provider(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group, cfg.Size), nil
}

// RegisteredProviders lists provider names in sorted order.
func RegisteredProviders() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
