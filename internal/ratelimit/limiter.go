package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pressroom/admin-gateway/internal/storage"
)

// Result describes a rejected request. A nil *Result means allowed.
type Result struct {
	Exceeded   bool   `json:"exceeded"`
	Window     string `json:"window"`
	Count      int64  `json:"count"`
	Limit      int    `json:"limit"`
	ResetTime  int64  `json:"reset_time"`
	RetryAfter int    `json:"retry_after"`
}

type window struct {
	name    string
	seconds int64
	limit   int
}

// windowsFor returns the configured windows in evaluation order. The minute
// window comes first so it wins when several limits are exceeded at once.
func windowsFor(cfg Config) []window {
	ws := make([]window, 0, 3)
	if cfg.RequestsPerMinute > 0 {
		ws = append(ws, window{"minute", 60, cfg.RequestsPerMinute})
	}
	if cfg.RequestsPerHour > 0 {
		ws = append(ws, window{"hour", 3600, cfg.RequestsPerHour})
	}
	if cfg.RequestsPerDay > 0 {
		ws = append(ws, window{"day", 86400, cfg.RequestsPerDay})
	}

	return ws
}

// Limiter tracks per-client request counts in fixed time windows backed by
// the shared key-value store, degrading to in-process counters when the
// store is unreachable.
type Limiter struct {
	store    storage.KV
	configs  map[Tier]Config
	fallback *localFallback
	now      func() time.Time
}

func NewLimiter(store storage.KV, configs map[Tier]Config) *Limiter {
	if configs == nil {
		configs = TierConfigs
	}

	return &Limiter{
		store:    store,
		configs:  configs,
		fallback: newLocalFallback(),
		now:      time.Now,
	}
}

// ClientIdentifier derives the rate-limit key for a request: the first hop
// of X-Forwarded-For, else the connection address, else "unknown".
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return "unknown"
}

// Check applies the tier's limits to the request. It returns nil when the
// request is allowed, or rejection details for the first exceeded window.
func (l *Limiter) Check(ctx context.Context, r *http.Request, tier Tier) *Result {
	return l.CheckKey(ctx, ClientIdentifier(r), tier)
}

// CheckKey is Check for an already-derived client identifier.
//
// Every call counts against the limit, including the call that exceeds it.
// Store errors are never surfaced: counting degrades to the local fallback
// instead, so a request is never rejected because the store was down.
func (l *Limiter) CheckKey(ctx context.Context, client string, tier Tier) *Result {
	cfg, ok := l.configs[tier]
	if !ok {
		log.Printf("No rate limit config for tier %q, allowing request", tier)
		return nil
	}

	now := l.now().Unix()

	var exceeded *Result
	for _, w := range windowsFor(cfg) {
		key := fmt.Sprintf("rate_limit:%s:%s:%s:%d", tier, client, w.name, now/w.seconds)

		count, err := l.store.Incr(ctx, key)
		if err != nil {
			log.Printf("Rate limit store error for %s/%s: %v, using local fallback", tier, client, err)
			return l.fallback.check(client, tier, cfg, now)
		}

		if count == 1 {
			l.store.Expire(ctx, key, time.Duration(w.seconds)*time.Second)
		}

		// Keep incrementing the remaining windows even after a hit so
		// every window counts this request exactly once.
		if exceeded == nil && count > int64(w.limit) {
			reset := (now/w.seconds + 1) * w.seconds
			exceeded = &Result{
				Exceeded:   true,
				Window:     w.name,
				Count:      count,
				Limit:      w.limit,
				ResetTime:  reset,
				RetryAfter: retryAfter(reset, now),
			}
		}
	}

	if exceeded != nil {
		log.Printf("Rate limit exceeded for %s on tier %s: %d/%d %s",
			client, tier, exceeded.Count, exceeded.Limit, exceeded.Window)
	}

	return exceeded
}

func retryAfter(reset, now int64) int {
	if reset <= now {
		return 0
	}

	return int(reset - now)
}
