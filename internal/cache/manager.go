package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/pressroom/admin-gateway/internal/storage"
)

// Manager memoizes expensive read results in the shared key-value store
// with per-type TTL policies and pattern-based invalidation. Caching is
// best-effort: store failures degrade to misses and dropped writes, never
// to errors for the caller.
type Manager struct {
	store   storage.KV
	configs map[string]Config

	hits          int64
	misses        int64
	sets          int64
	invalidations int64
}

func NewManager(store storage.KV, configs map[string]Config) *Manager {
	if configs == nil {
		configs = Configs
	}

	return &Manager{store: store, configs: configs}
}

// Key builds the deterministic cache key for a type, suffix and parameter
// set. Parameters are sorted by name and composite values serialized as
// canonical JSON, so equivalent calls always map to the same key.
func (m *Manager) Key(cacheType, keySuffix string, params map[string]any) string {
	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["key_suffix"] = keySuffix

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := []string{"cache:" + cacheType}
	for _, name := range names {
		parts = append(parts, name+":"+paramString(merged[name]))
	}

	return strings.Join(parts, ":")
}

func paramString(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", v)
	default:
		// encoding/json writes map keys in sorted order, which keeps
		// composite values canonical.
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// Get returns the cached value for the key, deserialized from JSON, and
// whether it was present. Store errors and malformed payloads count as
// misses.
func (m *Manager) Get(ctx context.Context, cacheType, keySuffix string, params map[string]any) (any, bool) {
	key := m.Key(cacheType, keySuffix, params)

	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if err != storage.ErrNotFound {
			log.Printf("Cache get error for %s: %v", key, err)
		}
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		log.Printf("Cache payload unreadable for %s: %v", key, err)
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&m.hits, 1)
	return value, true
}

// Set stores data under the type's key with the type's TTL. Unknown cache
// types are a logged no-op.
func (m *Manager) Set(ctx context.Context, cacheType string, data any, keySuffix string, params map[string]any) {
	cfg, ok := m.configs[cacheType]
	if !ok {
		log.Printf("No cache config found for type: %s", cacheType)
		return
	}

	serialized, err := json.Marshal(data)
	if err != nil {
		log.Printf("Cache serialization error for type %s: %v", cacheType, err)
		return
	}

	key := m.Key(cacheType, keySuffix, params)
	if err := m.store.Set(ctx, key, string(serialized), cfg.TTL); err != nil {
		log.Printf("Cache set error for %s: %v", key, err)
		return
	}

	atomic.AddInt64(&m.sets, 1)
}

// Invalidate deletes every key matching the pattern, or the type's
// configured invalidation pattern when none is given. It returns the
// number of keys removed.
func (m *Manager) Invalidate(ctx context.Context, cacheType, pattern string) int {
	if pattern == "" {
		cfg, ok := m.configs[cacheType]
		if !ok {
			return 0
		}
		pattern = cfg.InvalidationPattern
	}
	if pattern == "" {
		return 0
	}

	keys, err := m.store.Keys(ctx, "cache:"+pattern)
	if err != nil {
		log.Printf("Cache invalidation error for pattern %s: %v", pattern, err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	if err := m.store.Delete(ctx, keys...); err != nil {
		log.Printf("Cache invalidation delete error for pattern %s: %v", pattern, err)
		return 0
	}

	atomic.AddInt64(&m.invalidations, int64(len(keys)))
	log.Printf("Invalidated %d cache entries for pattern: %s", len(keys), pattern)

	return len(keys)
}

// Stats is a point-in-time snapshot of the manager's counters. The
// counters are process-local observability only and reset on restart.
type Stats struct {
	TotalRequests     int64   `json:"total_requests"`
	HitRatePercentage float64 `json:"hit_rate_percentage"`
	Hits              int64   `json:"hits"`
	Misses            int64   `json:"misses"`
	Sets              int64   `json:"sets"`
	Invalidations     int64   `json:"invalidations"`
}

func (m *Manager) Stats() Stats {
	hits := atomic.LoadInt64(&m.hits)
	misses := atomic.LoadInt64(&m.misses)
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		TotalRequests:     total,
		HitRatePercentage: hitRate,
		Hits:              hits,
		Misses:            misses,
		Sets:              atomic.LoadInt64(&m.sets),
		Invalidations:     atomic.LoadInt64(&m.invalidations),
	}
}
