package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pressroom/admin-gateway/internal/storage"
)

// memKV is an in-memory stand-in for the shared store.
type memKV struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memEntry
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func newMemKV(now func() time.Time) *memKV {
	if now == nil {
		now = time.Now
	}
	return &memKV{now: now, entries: make(map[string]memEntry)}
}

func (m *memKV) get(key string) (memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(m.now()) {
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
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memKV) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.get(key)
	count := int64(0)
	if ok {
		count, _ = strconv.ParseInt(e.value, 10, 64)
	}
	count++
	m.entries[key] = memEntry{value: strconv.FormatInt(count, 10), expiresAt: e.expiresAt}
	return count, nil
}

func (m *memKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.get(key); ok {
		e.expiresAt = m.now().Add(ttl)
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
	return nil, errors.New("not implemented")
}

// brokenKV fails every call, simulating an unreachable store.
type brokenKV struct{}

var errDown = errors.New("store unreachable")

func (brokenKV) Get(context.Context, string) (string, error)           { return "", errDown }
func (brokenKV) Set(context.Context, string, string, time.Duration) error { return errDown }
func (brokenKV) Incr(context.Context, string) (int64, error)           { return 0, errDown }
func (brokenKV) Expire(context.Context, string, time.Duration) error   { return errDown }
func (brokenKV) Delete(context.Context, ...string) error               { return errDown }
func (brokenKV) Keys(context.Context, string) ([]string, error)        { return nil, errDown }

func testLimiter(t *testing.T) (*Limiter, *memKV) {
	t.Helper()

	base := time.Unix(1_700_000_010, 0)
	kv := newMemKV(func() time.Time { return base })
	l := NewLimiter(kv, nil)
	l.now = func() time.Time { return base }

	return l, kv
}

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.195", "192.168.1.100:443", "203.0.113.195"},
		{"forwarded chain", "203.0.113.195, 192.168.1.100", "10.0.0.1:80", "203.0.113.195"},
		{"remote addr", "", "192.168.1.100:51234", "192.168.1.100"},
		{"remote addr no port", "", "192.168.1.100", "192.168.1.100"},
		{"nothing", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := ClientIdentifier(r); got != tt.want {
				t.Errorf("ClientIdentifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnknownTierAllowed(t *testing.T) {
	l, _ := testLimiter(t)

	if res := l.CheckKey(context.Background(), "10.0.0.5", Tier("does_not_exist")); res != nil {
		t.Fatalf("Unknown tier should fail open, got rejection: %+v", res)
	}
}

func TestMinuteWindowExceeded(t *testing.T) {
	l, _ := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if res := l.CheckKey(ctx, "10.0.0.5", TierAdminActions); res != nil {
			t.Fatalf("Request %d should be allowed, got %+v", i+1, res)
		}
	}

	res := l.CheckKey(ctx, "10.0.0.5", TierAdminActions)
	if res == nil {
		t.Fatal("11th request should be rejected")
	}
	if res.Window != "minute" {
		t.Errorf("Window = %q, want minute", res.Window)
	}
	if res.Limit != 10 {
		t.Errorf("Limit = %d, want 10", res.Limit)
	}
	if res.Count != 11 {
		t.Errorf("Count = %d, want 11 (the rejecting request still counts)", res.Count)
	}
	if res.RetryAfter <= 0 || res.RetryAfter > 60 {
		t.Errorf("RetryAfter = %d, want within (0, 60]", res.RetryAfter)
	}
	if res.ResetTime != int64(res.RetryAfter)+l.now().Unix() {
		t.Errorf("ResetTime %d inconsistent with RetryAfter %d", res.ResetTime, res.RetryAfter)
	}
}

func TestHourWindowExceeded(t *testing.T) {
	l, _ := testLimiter(t)
	ctx := context.Background()

	if res := l.CheckKey(ctx, "203.0.113.9", TierAppSubmission); res != nil {
		t.Fatalf("First submission should be allowed, got %+v", res)
	}

	res := l.CheckKey(ctx, "203.0.113.9", TierAppSubmission)
	if res == nil {
		t.Fatal("Second submission within the hour should be rejected")
	}
	if res.Window != "hour" {
		t.Errorf("Window = %q, want hour", res.Window)
	}
	if res.Limit != 1 {
		t.Errorf("Limit = %d, want 1", res.Limit)
	}
}

func TestClientIsolation(t *testing.T) {
	l, _ := testLimiter(t)
	ctx := context.Background()

	// Exhaust client A under billing (5/min).
	for i := 0; i < 5; i++ {
		if res := l.CheckKey(ctx, "1.1.1.1", TierBilling); res != nil {
			t.Fatalf("Client A request %d should be allowed", i+1)
		}
	}
	if res := l.CheckKey(ctx, "1.1.1.1", TierBilling); res == nil {
		t.Fatal("Client A 6th request should be rejected")
	}

	// Client B is unaffected.
	for i := 0; i < 5; i++ {
		if res := l.CheckKey(ctx, "2.2.2.2", TierBilling); res != nil {
			t.Fatalf("Client B request %d should be allowed despite A's rejection", i+1)
		}
	}
	if res := l.CheckKey(ctx, "2.2.2.2", TierBilling); res == nil {
		t.Fatal("Client B 6th request should be rejected independently")
	}
}

func TestTierIsolation(t *testing.T) {
	l, _ := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.CheckKey(ctx, "10.0.0.5", TierBilling)
	}
	if res := l.CheckKey(ctx, "10.0.0.5", TierBilling); res == nil {
		t.Fatal("Billing quota should be exhausted")
	}

	if res := l.CheckKey(ctx, "10.0.0.5", TierContent); res != nil {
		t.Fatalf("Content tier should be unaffected by billing exhaustion, got %+v", res)
	}
}

func TestWindowRollover(t *testing.T) {
	base := time.Unix(1_700_000_010, 0)
	now := base
	kv := newMemKV(func() time.Time { return now })
	l := NewLimiter(kv, nil)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.CheckKey(ctx, "10.0.0.5", TierBilling)
	}
	if res := l.CheckKey(ctx, "10.0.0.5", TierBilling); res == nil {
		t.Fatal("6th request in the window should be rejected")
	}

	// Next minute bucket: the counter starts fresh.
	now = base.Add(time.Minute)
	if res := l.CheckKey(ctx, "10.0.0.5", TierBilling); res != nil {
		t.Fatalf("Request after rollover should be allowed, got %+v", res)
	}
}

func TestEveryCallCounts(t *testing.T) {
	l, kv := testLimiter(t)
	ctx := context.Background()

	calls := 7 // exceeds billing's 5/min
	for i := 0; i < calls; i++ {
		l.CheckKey(ctx, "10.0.0.5", TierBilling)
	}

	bucket := l.now().Unix() / 60
	key := fmt.Sprintf("rate_limit:%s:%s:minute:%d", TierBilling, "10.0.0.5", bucket)

	raw, err := kv.Get(ctx, key)
	if err != nil {
		t.Fatalf("Counter key missing: %v", err)
	}
	if raw != strconv.Itoa(calls) {
		t.Errorf("Counter = %s, want %d (rejected calls must still count)", raw, calls)
	}
}

func TestAllWindowsIncremented(t *testing.T) {
	l, kv := testLimiter(t)
	ctx := context.Background()

	// admin_actions checks both minute and hour windows.
	for i := 0; i < 12; i++ {
		l.CheckKey(ctx, "10.0.0.5", TierAdminActions)
	}

	now := l.now().Unix()
	hourKey := fmt.Sprintf("rate_limit:%s:%s:hour:%d", TierAdminActions, "10.0.0.5", now/3600)

	raw, err := kv.Get(ctx, hourKey)
	if err != nil {
		t.Fatalf("Hour counter missing: %v", err)
	}
	if raw != "12" {
		t.Errorf("Hour counter = %s, want 12 even after minute rejections", raw)
	}
}

func TestFallbackWhenStoreDown(t *testing.T) {
	l := NewLimiter(brokenKV{}, nil)
	l.now = func() time.Time { return time.Unix(1_700_000_010, 0) }
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if res := l.CheckKey(ctx, "10.0.0.5", TierAdminActions); res != nil {
			t.Fatalf("Request %d should be allowed via fallback, got %+v", i+1, res)
		}
	}

	res := l.CheckKey(ctx, "10.0.0.5", TierAdminActions)
	if res == nil {
		t.Fatal("11th request should be rejected by the local fallback")
	}
	if res.Window != "minute" {
		t.Errorf("Window = %q, want minute (fallback is minute-only)", res.Window)
	}
}

func TestFallbackSkipsHourOnlyTiers(t *testing.T) {
	l := NewLimiter(brokenKV{}, nil)
	ctx := context.Background()

	// email has no minute limit; the fallback enforces nothing for it.
	for i := 0; i < 25; i++ {
		if res := l.CheckKey(ctx, "10.0.0.5", TierEmail); res != nil {
			t.Fatalf("Hour-only tier must not be enforced in fallback mode, got %+v", res)
		}
	}
}

func TestFallbackConcurrentAccess(t *testing.T) {
	l := NewLimiter(brokenKV{}, nil)
	l.now = func() time.Time { return time.Unix(1_700_000_010, 0) }
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(30)
	for i := 0; i < 30; i++ {
		go func() {
			defer wg.Done()
			l.CheckKey(ctx, "10.0.0.5", TierContent)
		}()
	}
	wg.Wait()

	// content allows 20/min: the 31st request must be over the limit.
	res := l.CheckKey(ctx, "10.0.0.5", TierContent)
	if res == nil {
		t.Fatal("Fallback should have counted all 30 concurrent requests")
	}
	if res.Count != 31 {
		t.Errorf("Count = %d, want 31", res.Count)
	}
}

func TestConfigBurstDefault(t *testing.T) {
	cfg := Config{RequestsPerMinute: 10}
	if cfg.Burst() != 10 {
		t.Errorf("Burst() = %d, want requests-per-minute default 10", cfg.Burst())
	}

	cfg = Config{RequestsPerMinute: 10, BurstLimit: 5}
	if cfg.Burst() != 5 {
		t.Errorf("Burst() = %d, want 5", cfg.Burst())
	}
}

func TestAllTiersConfigured(t *testing.T) {
	tiers := []Tier{TierAdminActions, TierAppSubmission, TierBilling, TierEmail, TierContent, TierGeneralAuth}

	for _, tier := range tiers {
		cfg, ok := TierConfigs[tier]
		if !ok {
			t.Errorf("Tier %s has no config", tier)
			continue
		}
		if cfg.RequestsPerMinute == 0 && cfg.RequestsPerHour == 0 && cfg.RequestsPerDay == 0 {
			t.Errorf("Tier %s has no window limit at all", tier)
		}
	}
}
