// Package cache holds the Redis client and the read-through cache for
// task list queries. Cached values are the serialized response bytes, so
// a hit is byte-identical to the miss that populated it. Writes are
// best-effort: cache failures never fail the request.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"race-weekend-api/internal/config"
	"race-weekend-api/pkg/logger"
)

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use).
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		client = redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			return
		}
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

// GetTaskList reads a cached list payload. Returns (nil, false) on miss
// or any Redis error.
func GetTaskList(ctx context.Context, key string) ([]byte, bool) {
	c := Client(ctx)
	if c == nil {
		return nil, false
	}
	b, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get task list failed", "error", err)
		return nil, false
	}
	return b, true
}

// SetTaskList writes a serialized list payload with the configured TTL.
func SetTaskList(ctx context.Context, key string, payload []byte) {
	c := Client(ctx)
	if c == nil {
		return
	}
	ttl := time.Duration(config.Get().CacheTTL) * time.Second
	if err := c.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set task list failed", "error", err)
	}
}
