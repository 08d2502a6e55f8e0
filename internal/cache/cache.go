package cache

// EvictCallback is called when an entry is pushed out by capacity. Expiry does not
// invoke it on every provider: Redis drops expired fields server-side.
type EvictCallback func(key string, value []byte)

// Cache is a bounded byte-value store with LRU eviction and a per-entry TTL.
type Cache interface {
	// Get returns the value stored under key. With ProviderConfig.Sliding a hit also
	// restarts the entry TTL.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value and restarting its TTL.
	Set(key string, value []byte)

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)

	// Len reports the number of live entries.
	Len() int

	// Close releases backend connections. It is a no-op for in-memory caches.
	Close() error
}

// Logger receives backend errors that the Cache methods cannot return.
type Logger interface {
	Error(msg string, err error)
}
