package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// The Redis provider tests need a Redis 7.4+ or Valkey 8+ server.
// Set REDIS_ADDRESS (e.g., "localhost:6379") to enable them.

const testRedisDB = 15

func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}
	return addr
}

func newTestRedisClient(t *testing.T, addr string) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: testRedisDB})
	t.Cleanup(func() { _ = client.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}
	return client
}

func newTestRedisCache(t *testing.T, cfg ProviderConfig) (Cache, *redis.Client) {
	t.Helper()
	addr := skipIfNoRedis(t)
	client := newTestRedisClient(t, addr)

	cfg.RedisAddress = addr
	cfg.RedisDB = testRedisDB
	if cfg.Size == 0 {
		cfg.Size = 100
	}
	if cfg.TTL == 0 {
		cfg.TTL = 10 * time.Second
	}
	c, err := New("redis", cfg)
	if err != nil {
		t.Fatalf("New redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, client
}

func TestRedisCache_GetSetDeleteLen(t *testing.T) {
	c, _ := newTestRedisCache(t, ProviderConfig{})

	if _, ok := c.Get("tt0903747:0"); ok {
		t.Fatal("Expected miss for new key")
	}
	if c.Len() != 0 {
		t.Fatalf("Expected Len 0 on clean DB, got %d", c.Len())
	}

	c.Set("tt0903747:0", []byte(`{"format":"srt"}`))
	c.Set("tt0903747:1", []byte(`{"format":"vtt"}`))

	val, ok := c.Get("tt0903747:0")
	if !ok || string(val) != `{"format":"srt"}` {
		t.Fatalf("Expected hit with stored value, got %q (ok=%v)", val, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Expected Len 2, got %d", c.Len())
	}

	c.Delete("tt0903747:1")
	if _, ok := c.Get("tt0903747:1"); ok {
		t.Error("Expected deleted key to miss")
	}
	if c.Len() != 1 {
		t.Errorf("Expected Len 1 after Delete, got %d", c.Len())
	}
}

func TestRedisCache_KeyPrefixAndGroup(t *testing.T) {
	c, client := newTestRedisCache(t, ProviderConfig{KeyPrefix: "test:", Group: "locator-redis"})
	c.Set("Show.S01E02.mkv|1441633438", []byte("x"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	exists, err := client.HExists(ctx, "test:locator-redis:data", "Show.S01E02.mkv|1441633438").Result()
	if err != nil {
		t.Fatalf("HExists: %v", err)
	}
	if !exists {
		t.Fatal("Expected the entry under the prefixed group hash")
	}
}

func TestRedisCache_LRU_TouchPromotesEntry(t *testing.T) {
	var evicted []string
	c, _ := newTestRedisCache(t, ProviderConfig{
		Size:    2,
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	_, _ = c.Get("a")
	c.Set("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Fatal("Expected b to be evicted after a was touched")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("Key %s should still be present", key)
		}
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("Expected eviction of b, got %v", evicted)
	}
}

func TestRedisCache_SlidingTTL(t *testing.T) {
	c, _ := newTestRedisCache(t, ProviderConfig{TTL: 600 * time.Millisecond, Sliding: true})

	c.Set("k", []byte("v"))
	time.Sleep(400 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected hit before TTL elapsed")
	}
	time.Sleep(400 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected the previous read to restart the field TTL")
	}
}

func TestRedisCache_AbsoluteTTL(t *testing.T) {
	c, _ := newTestRedisCache(t, ProviderConfig{TTL: 600 * time.Millisecond})

	c.Set("k", []byte("v"))
	time.Sleep(400 * time.Millisecond)
	_, _ = c.Get("k")
	time.Sleep(400 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected miss once the absolute TTL elapsed")
	}
}
