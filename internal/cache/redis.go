package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "subtirrent:"
	redisOpTimeout   = 2 * time.Second
	redisDialTimeout = 5 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache shares subtitle records between replicas through Redis 7.4+ or Valkey 8+.
//
// Each cache group owns two keys:
//
//   - <prefix><group>:data, a hash of entries whose fields expire individually (HPEXPIRE)
//   - <prefix><group>:lru, a sorted set scoring every entry by its last access in µs
//
// Reads, writes and deletes each run as one Lua script so the hash and the recency index
// never disagree for longer than a field expiry. Index members left behind by expired
// fields are popped lazily by the eviction loop.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	sliding bool
	maxSize int
	onEvict EvictCallback
	logger  Logger
	dataKey string
	lruKey  string
}

// touchScript returns the entry, bumps its recency and, when ARGV[3] > 0, restarts
// the field TTL.
// KEYS: data, lru. ARGV: now µs, field, sliding TTL ms.
var touchScript = redis.NewScript(`
local value = redis.call('HGET', KEYS[1], ARGV[2])
if not value then
    return false
end
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
local slideMs = tonumber(ARGV[3])
if slideMs > 0 then
    redis.call('HPEXPIRE', KEYS[1], slideMs, 'FIELDS', 1, ARGV[2])
end
return value
`)

// writeScript stores the entry with its TTL, records its recency and pops the least
// recently used members while the index exceeds capacity.
// KEYS: data, lru. ARGV: value, now µs, field, capacity, TTL ms.
// Returns the evicted fields.
var writeScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[3], ARGV[1])
redis.call('HPEXPIRE', KEYS[1], tonumber(ARGV[5]), 'FIELDS', 1, ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])

local capacity = tonumber(ARGV[4])
local evicted = {}
while redis.call('ZCARD', KEYS[2]) > capacity do
    local popped = redis.call('ZPOPMIN', KEYS[2], 1)
    if #popped == 0 then
        break
    end
    redis.call('HDEL', KEYS[1], popped[1])
    evicted[#evicted + 1] = popped[1]
end
return evicted
`)

// deleteScript drops the entry and its recency member.
// KEYS: data, lru. ARGV: field.
var deleteScript = redis.NewScript(`
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('ZREM', KEYS[2], ARGV[1])
return 1
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddress, err)
	}

	namespace := cfg.KeyPrefix
	if namespace == "" {
		namespace = defaultKeyPrefix
	}
	if cfg.Group != "" {
		namespace += cfg.Group + ":"
	}

	return &redisCache{
		client:  client,
		ttl:     cfg.TTL,
		sliding: cfg.Sliding,
		maxSize: cfg.Size,
		onEvict: cfg.OnEvict,
		logger:  cfg.Logger,
		dataKey: namespace + "data",
		lruKey:  namespace + "lru",
	}, nil
}

func (r *redisCache) scriptKeys() []string {
	return []string{r.dataKey, r.lruKey}
}

func (r *redisCache) report(op string, err error) {
	if r.logger != nil {
		r.logger.Error("redis cache "+op+" failed", err)
	}
}

func nowMicros() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 10)
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var slide int64
	if r.sliding {
		slide = r.ttl.Milliseconds()
	}
	value, err := touchScript.Run(ctx, r.client, r.scriptKeys(), nowMicros(), key, slide).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false
	case err != nil:
		r.report("get", err)
		return nil, false
	}
	return []byte(value), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	evicted, err := writeScript.Run(ctx, r.client, r.scriptKeys(),
		value, nowMicros(), key, r.maxSize, r.ttl.Milliseconds(),
	).StringSlice()
	if err != nil {
		r.report("set", err)
		return
	}
	if r.onEvict == nil {
		return
	}
	// Evicted values are not read back; callbacks only get the key.
	for _, field := range evicted {
		r.onEvict(field, nil)
	}
}

func (r *redisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := deleteScript.Run(ctx, r.client, r.scriptKeys(), key).Err(); err != nil {
		r.report("delete", err)
	}
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.HLen(ctx, r.dataKey).Result()
	if err != nil {
		r.report("len", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
