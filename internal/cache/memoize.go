package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Through is the read-through composition: look up, compute on miss, store
// the result. Compute errors pass through untouched and nothing is cached.
func (m *Manager) Through(ctx context.Context, cacheType, keySuffix string, params map[string]any, compute func(context.Context) (any, error)) (any, error) {
	if cached, ok := m.Get(ctx, cacheType, keySuffix, params); ok {
		return cached, nil
	}

	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	m.Set(ctx, cacheType, result, keySuffix, params)

	return result, nil
}

// Cached wraps a computation so its result is keyed by a digest of its
// arguments. Staleness and invalidation rules are identical to direct
// Get/Set use.
func Cached(m *Manager, cacheType, keySuffix string, fn func(ctx context.Context, args ...any) (any, error)) func(ctx context.Context, args ...any) (any, error) {
	return func(ctx context.Context, args ...any) (any, error) {
		params := map[string]any{}
		if len(args) > 0 {
			params["args"] = argsDigest(args)
		}

		return m.Through(ctx, cacheType, keySuffix, params, func(ctx context.Context) (any, error) {
			return fn(ctx, args...)
		})
	}
}

func argsDigest(args []any) string {
	b, err := json.Marshal(args)
	if err != nil {
		b = []byte(fmt.Sprintf("%v", args))
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
