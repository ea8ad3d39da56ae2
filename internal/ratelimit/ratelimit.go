// Package ratelimit implements a fixed-window request limiter backed by
// an atomic counter store (Redis in production). Windows are 60 seconds
// aligned to wall-clock minute boundaries, so a burst straddling a
// boundary can reach up to twice the limit; that trade buys O(1) state
// per key with no sorted-set bookkeeping.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const window = 60 * time.Second

// CounterStore atomically increments a key, setting its expiry when the
// increment created the key.
type CounterStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	Reset     int64 // unix seconds when the window rolls over
}

// RetryAfter returns the seconds a denied caller should wait, floored at zero.
func (r Result) RetryAfter(now time.Time) int64 {
	if d := r.Reset - now.Unix(); d > 0 {
		return d
	}
	return 0
}

// Limiter counts requests per key per fixed window.
type Limiter struct {
	store CounterStore
	limit int64
}

func New(store CounterStore, limit int64) *Limiter {
	return &Limiter{store: store, limit: limit}
}

// Check increments the caller's counter for the current window and
// reports whether the request is within quota. The increment persists
// even if the request is later rejected downstream.
func (l *Limiter) Check(ctx context.Context, key string, now time.Time) (Result, error) {
	windowStart := now.Unix() - now.Unix()%60
	counterKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart)

	count, err := l.store.Incr(ctx, counterKey, window)
	if err != nil {
		return Result{}, err
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     windowStart + 60,
	}, nil
}

// RedisStore adapts a Redis client to CounterStore using INCR + EXPIRE.
type RedisStore struct {
	Client *redis.Client
}

// Incr increments the key; the first increment in a window sets the
// key's expiry so stale windows self-clean.
func (s RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.Client == nil {
		return 0, fmt.Errorf("counter store unavailable")
	}
	count, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.Client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
