package cache

import (
	"testing"
	"time"
)

func newMemoryTestCache(t *testing.T, cfg ProviderConfig) Cache {
	t.Helper()
	c, err := New("memory", cfg)
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	c := newMemoryTestCache(t, ProviderConfig{Size: 10, TTL: time.Hour})

	val, ok := c.Get("tt0903747:1:1:0")
	if ok || val != nil {
		t.Fatalf("Expected miss on empty cache, got %q", val)
	}

	c.Set("tt0903747:1:1:0", []byte(`{"trackIndex":2}`))
	val, ok = c.Get("tt0903747:1:1:0")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if string(val) != `{"trackIndex":2}` {
		t.Fatalf("Unexpected value %q", val)
	}
}

func TestMemoryCache_DeleteAndLen(t *testing.T) {
	c := newMemoryTestCache(t, ProviderConfig{Size: 10, TTL: time.Hour})

	c.Delete("absent")
	if c.Len() != 0 {
		t.Fatal("Expected empty cache")
	}

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("b", []byte("3"))

	if c.Len() != 2 {
		t.Errorf("Expected Len 2 after overwrite, got %d", c.Len())
	}
	if val, _ := c.Get("b"); string(val) != "3" {
		t.Errorf("Expected overwritten value 3, got %q", val)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be gone after Delete")
	}
	if c.Len() != 1 {
		t.Errorf("Expected Len 1 after Delete, got %d", c.Len())
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := newMemoryTestCache(t, ProviderConfig{
		Size:    2,
		TTL:     time.Hour,
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	_, _ = c.Get("a") // a becomes most recent
	c.Set("c", []byte("3"))

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("Expected b to be evicted, got %v", evicted)
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("Key %s should still be present", key)
		}
	}
}

func TestMemoryCache_AbsoluteTTL(t *testing.T) {
	c := newMemoryTestCache(t, ProviderConfig{Size: 10, TTL: 300 * time.Millisecond})

	c.Set("k", []byte("v"))
	time.Sleep(200 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected hit before TTL elapsed")
	}
	time.Sleep(200 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected miss once the absolute TTL elapsed, reads must not extend it")
	}
}

func TestMemoryCache_SlidingTTL(t *testing.T) {
	c := newMemoryTestCache(t, ProviderConfig{Size: 10, TTL: 300 * time.Millisecond, Sliding: true})

	c.Set("k", []byte("v"))
	time.Sleep(200 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected hit before TTL elapsed")
	}
	time.Sleep(200 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected the previous read to restart the TTL")
	}
	time.Sleep(400 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected miss after an idle period longer than the TTL")
	}
}

func TestMemoryCache_SlidingDoesNotFireEvict(t *testing.T) {
	evictions := 0
	c := newMemoryTestCache(t, ProviderConfig{
		Size:    2,
		TTL:     time.Hour,
		Sliding: true,
		OnEvict: func(string, []byte) { evictions++ },
	})

	c.Set("k", []byte("v"))
	for i := 0; i < 5; i++ {
		_, _ = c.Get("k")
	}
	if evictions != 0 {
		t.Fatalf("Expected refresh on read to not count as eviction, got %d", evictions)
	}
}
