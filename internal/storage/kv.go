package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// KV is the key-value surface the rate limiter and cache manager are built
// on. Redis implements it in production; tests supply in-memory fakes.
type KV interface {
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Incr atomically increments the counter at key, creating it at 1 if
	// absent.
	Incr(ctx context.Context, key string) (int64, error)

	Expire(ctx context.Context, key string, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// Keys returns all keys matching a glob-style pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
