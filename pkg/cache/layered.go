package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// LayeredCache implements a two-level cache (L1: memory, L2: Redis).
// Reads served from Redis are promoted into memory for a short period.
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
	promoteTTL time.Duration
}

// NewLayeredCache creates a layered cache with memory and Redis.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		PromoteTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache:   NewMemoryCache(),
		redisCache: redisCache,
		promoteTTL: cfg.PromoteTTL,
	}
}

// Close stops the memory sweeper and closes the Redis connection.
func (lc *LayeredCache) Close() error {
	lc.memCache.Close()
	return lc.redisCache.Close()
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// Write-through: Redis first, then memory.
	if err := lc.redisCache.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, ttl)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	env, err := lc.redisCache.getEnvelope(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return err
	}

	lc.memCache.mu.Lock()
	lc.memCache.data[key] = &memoryItem{env: env, expireAt: time.Now().Add(lc.promoteTTL)}
	lc.memCache.mu.Unlock()
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	if err := lc.redisCache.Delete(ctx, keys...); err != nil {
		return err
	}
	return lc.memCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) Info(ctx context.Context, key string) (Info, error) {
	info, err := lc.memCache.Info(ctx, key)
	if err == nil && info.Exists {
		return info, nil
	}
	info, err = lc.redisCache.Info(ctx, key)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return Info{}, err
	}
	return info, nil
}
