package cache

import (
	"context"
	"errors"
	"path"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pressroom/admin-gateway/internal/storage"
)

// memKV is an in-memory stand-in for the shared store with a controllable
// clock for TTL tests.
type memKV struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]memEntry
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func newMemKV() *memKV {
	return &memKV{now: time.Unix(1_700_000_010, 0), entries: make(map[string]memEntry)}
}

func (m *memKV) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *memKV) get(key string) (memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(m.now) {
		delete(m.entries, key)
		return memEntry{}, false
	}
	return e, true
}

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.get(key)
	if !ok {
		return "", storage.ErrNotFound
	}
	return e.value, nil
}

func (m *memKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memKV) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, _ := m.get(key)
	count, _ := strconv.ParseInt(e.value, 10, 64)
	count++
	m.entries[key] = memEntry{value: strconv.FormatInt(count, 10), expiresAt: e.expiresAt}
	return count, nil
}

func (m *memKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.get(key); ok {
		e.expiresAt = m.now.Add(ttl)
		m.entries[key] = e
	}
	return nil
}

func (m *memKV) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for k := range m.entries {
		if ok, _ := path.Match(pattern, k); ok {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// brokenKV fails every call.
type brokenKV struct{}

var errDown = errors.New("store unreachable")

func (brokenKV) Get(context.Context, string) (string, error)               { return "", errDown }
func (brokenKV) Set(context.Context, string, string, time.Duration) error { return errDown }
func (brokenKV) Incr(context.Context, string) (int64, error)               { return 0, errDown }
func (brokenKV) Expire(context.Context, string, time.Duration) error       { return errDown }
func (brokenKV) Delete(context.Context, ...string) error                   { return errDown }
func (brokenKV) Keys(context.Context, string) ([]string, error)            { return nil, errDown }

func TestRoundTrip(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	m.Set(ctx, "admin_stats", map[string]interface{}{"total": 42}, "overview", nil)

	got, ok := m.Get(ctx, "admin_stats", "overview", nil)
	if !ok {
		t.Fatal("Expected a cache hit immediately after set")
	}

	data, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map payload, got %T", got)
	}
	if data["total"] != float64(42) {
		t.Errorf("total = %v, want 42", data["total"])
	}
}

func TestKeyOrderIndependence(t *testing.T) {
	m := NewManager(newMemKV(), nil)

	a := m.Key("article_lists", "", map[string]interface{}{"status": "published", "page": 1})
	b := m.Key("article_lists", "", map[string]interface{}{"page": 1, "status": "published"})

	if a != b {
		t.Errorf("Equivalent parameter sets produced different keys:\n%s\n%s", a, b)
	}
}

func TestKeyCompositeValuesCanonical(t *testing.T) {
	m := NewManager(newMemKV(), nil)

	a := m.Key("analytics", "", map[string]interface{}{
		"filter": map[string]interface{}{"category": "tech", "min_views": 100},
	})
	b := m.Key("analytics", "", map[string]interface{}{
		"filter": map[string]interface{}{"min_views": 100, "category": "tech"},
	})

	if a != b {
		t.Errorf("Composite values must serialize canonically:\n%s\n%s", a, b)
	}
}

func TestKeyDistinguishesTypes(t *testing.T) {
	m := NewManager(newMemKV(), nil)

	a := m.Key("article_lists", "", map[string]interface{}{"page": 1})
	b := m.Key("author_data", "", map[string]interface{}{"page": 1})

	if a == b {
		t.Error("Different cache types must never share a key")
	}
}

func TestTTLExpiry(t *testing.T) {
	kv := newMemKV()
	m := NewManager(kv, nil)
	ctx := context.Background()

	m.Set(ctx, "admin_stats", map[string]interface{}{"total": 42}, "overview", nil)

	if _, ok := m.Get(ctx, "admin_stats", "overview", nil); !ok {
		t.Fatal("Entry should be present before the TTL elapses")
	}

	kv.advance(301 * time.Second) // admin_stats TTL is 300s

	if _, ok := m.Get(ctx, "admin_stats", "overview", nil); ok {
		t.Error("Entry should have expired after 301s")
	}
}

func TestInvalidation(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	m.Set(ctx, "article_lists", []interface{}{"a"}, "", map[string]interface{}{"page": 1})
	m.Set(ctx, "article_lists", []interface{}{"b"}, "", map[string]interface{}{"page": 2})
	m.Set(ctx, "author_data", map[string]interface{}{"name": "x"}, "profile", nil)

	removed := m.Invalidate(ctx, "article_lists", "")
	if removed != 2 {
		t.Errorf("Invalidate removed %d keys, want 2", removed)
	}

	if _, ok := m.Get(ctx, "article_lists", "", map[string]interface{}{"page": 1}); ok {
		t.Error("Page 1 should miss after invalidation")
	}
	if _, ok := m.Get(ctx, "article_lists", "", map[string]interface{}{"page": 2}); ok {
		t.Error("Page 2 should miss after invalidation")
	}
	if _, ok := m.Get(ctx, "author_data", "profile", nil); !ok {
		t.Error("Other cache types must be unaffected by the invalidation")
	}
}

func TestInvalidateUnknownTypeNoop(t *testing.T) {
	m := NewManager(newMemKV(), nil)

	if removed := m.Invalidate(context.Background(), "nope", ""); removed != 0 {
		t.Errorf("Unknown type invalidation removed %d keys, want 0", removed)
	}
}

func TestSetUnknownTypeNoop(t *testing.T) {
	kv := newMemKV()
	m := NewManager(kv, nil)
	ctx := context.Background()

	m.Set(ctx, "not_configured", "data", "", nil)

	if len(kv.entries) != 0 {
		t.Error("Set for an unconfigured type must not store anything")
	}
	if _, ok := m.Get(ctx, "not_configured", "", nil); ok {
		t.Error("Nothing should come back for an unconfigured type")
	}
}

func TestStoreErrorIsMiss(t *testing.T) {
	m := NewManager(brokenKV{}, nil)
	ctx := context.Background()

	// Neither call may panic or surface an error.
	m.Set(ctx, "admin_stats", map[string]interface{}{"total": 1}, "overview", nil)
	if _, ok := m.Get(ctx, "admin_stats", "overview", nil); ok {
		t.Error("A failing store must read as a miss")
	}

	stats := m.Stats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Sets != 0 {
		t.Errorf("Sets = %d, want 0 for dropped writes", stats.Sets)
	}
}

func TestMalformedPayloadIsMiss(t *testing.T) {
	kv := newMemKV()
	m := NewManager(kv, nil)
	ctx := context.Background()

	key := m.Key("admin_stats", "overview", nil)
	kv.Set(ctx, key, "{not json", 0)

	if _, ok := m.Get(ctx, "admin_stats", "overview", nil); ok {
		t.Error("Malformed payload must read as a miss, not crash")
	}
}

func TestTimeValuesRoundTripAsStrings(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	when := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	m.Set(ctx, "admin_stats", map[string]interface{}{"generated_at": when}, "overview", nil)

	got, ok := m.Get(ctx, "admin_stats", "overview", nil)
	if !ok {
		t.Fatal("Expected a hit")
	}

	data := got.(map[string]interface{})
	s, ok := data["generated_at"].(string)
	if !ok {
		t.Fatalf("Cached timestamps come back as strings, got %T", data["generated_at"])
	}
	if s != when.Format(time.RFC3339) {
		t.Errorf("generated_at = %q, want %q", s, when.Format(time.RFC3339))
	}
}

func TestStats(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	m.Get(ctx, "admin_stats", "overview", nil) // miss
	m.Set(ctx, "admin_stats", "v", "overview", nil)
	m.Get(ctx, "admin_stats", "overview", nil) // hit

	stats := m.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("Stats = %+v, want 1 hit / 1 miss / 1 set", stats)
	}
	if stats.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", stats.TotalRequests)
	}
	if stats.HitRatePercentage != 50 {
		t.Errorf("HitRatePercentage = %v, want 50", stats.HitRatePercentage)
	}
}

func TestThroughComputesOnce(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	computations := 0
	compute := func(ctx context.Context) (interface{}, error) {
		computations++
		return map[string]interface{}{"value": "expensive"}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Through(ctx, "analytics", "report", nil, compute); err != nil {
			t.Fatalf("Through failed: %v", err)
		}
	}

	if computations != 1 {
		t.Errorf("Computed %d times, want 1", computations)
	}
}

func TestThroughComputeErrorNotCached(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	want := errors.New("query failed")
	_, err := m.Through(ctx, "analytics", "report", nil, func(ctx context.Context) (interface{}, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Through error = %v, want %v", err, want)
	}

	if _, ok := m.Get(ctx, "analytics", "report", nil); ok {
		t.Error("Failed computations must not be cached")
	}
}

func TestCachedKeysByArguments(t *testing.T) {
	m := NewManager(newMemKV(), nil)
	ctx := context.Background()

	calls := 0
	fn := Cached(m, "author_data", "lookup", func(ctx context.Context, args ...interface{}) (interface{}, error) {
		calls++
		return args[0], nil
	})

	a1, _ := fn(ctx, "alice")
	a2, _ := fn(ctx, "alice")
	b1, _ := fn(ctx, "bob")

	if calls != 2 {
		t.Errorf("Compute ran %d times, want 2 (once per distinct argument set)", calls)
	}
	if a1 != "alice" || a2 != "alice" || b1 != "bob" {
		t.Errorf("Wrong results: %v %v %v", a1, a2, b1)
	}
}
