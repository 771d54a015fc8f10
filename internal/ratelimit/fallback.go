package ratelimit

import (
	"fmt"
	"sync"
)

// localFallback is the degraded-mode limiter used while the shared store is
// unreachable. It only enforces the minute window; hour and day limits are
// deliberately unenforced in fallback mode, matching the availability
// tradeoff of the shared-store path. State is process-local and lost on
// restart.
type localFallback struct {
	mu      sync.Mutex
	clients map[string]map[string]int64
}

func newLocalFallback() *localFallback {
	return &localFallback{clients: make(map[string]map[string]int64)}
}

func (f *localFallback) check(client string, tier Tier, cfg Config, now int64) *Result {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}

	bucket := now / 60
	bucketKey := fmt.Sprintf("%s_min_%d", tier, bucket)
	prefix := fmt.Sprintf("%s_min_", tier)

	f.mu.Lock()
	defer f.mu.Unlock()

	buckets, ok := f.clients[client]
	if !ok {
		buckets = make(map[string]int64)
		f.clients[client] = buckets
	}

	if _, ok := buckets[bucketKey]; !ok {
		// Purge stale buckets for this tier so the map stays bounded.
		for k := range buckets {
			if len(k) > len(prefix) && k[:len(prefix)] == prefix && k != bucketKey {
				delete(buckets, k)
			}
		}
	}

	buckets[bucketKey]++
	count := buckets[bucketKey]

	if count > int64(cfg.RequestsPerMinute) {
		reset := (bucket + 1) * 60
		return &Result{
			Exceeded:   true,
			Window:     "minute",
			Count:      count,
			Limit:      cfg.RequestsPerMinute,
			ResetTime:  reset,
			RetryAfter: retryAfter(reset, now),
		}
	}

	return nil
}
