package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BurstGuard smooths short spikes with a per-client token bucket sized by
// the tier's burst limit. The window counters remain the source of truth
// for quotas; the guard only rejects bursts faster than the tier sustains.
type BurstGuard struct {
	mu           sync.Mutex
	entries      map[string]*burstEntry
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type burstEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewBurstGuard() *BurstGuard {
	return &BurstGuard{
		entries:      make(map[string]*burstEntry),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
}

// Allow consumes one token from the client's bucket for the tier. Tiers
// without a burst limit always pass.
func (g *BurstGuard) Allow(client string, tier Tier, cfg Config) bool {
	burst := cfg.Burst()
	if burst <= 0 {
		return true
	}

	// Refill at the rate the minute window sustains; hour-only tiers
	// refill one token per second.
	rps := rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	if cfg.RequestsPerMinute <= 0 {
		rps = 1
	}

	key := string(tier) + ":" + client
	now := time.Now()

	g.mu.Lock()
	ent, ok := g.entries[key]
	if !ok {
		ent = &burstEntry{lim: rate.NewLimiter(rps, burst)}
		g.entries[key] = ent
	}
	ent.lastSeen = now
	g.mu.Unlock()

	return ent.lim.Allow()
}

func (g *BurstGuard) cleanup() {
	cutoff := time.Now().Add(-g.idleTTL)

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, ent := range g.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(g.entries, k)
		}
	}
}

// StartJanitor evicts idle buckets until the context is cancelled.
func (g *BurstGuard) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(g.cleanupEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.cleanup()
			}
		}
	}()
}
