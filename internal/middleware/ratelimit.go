package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/admin-gateway/internal/ratelimit"
)

// RateLimit applies the tier's window limits to every request on the
// route. Rejections become 429 responses with a Retry-After header;
// everything else passes through untouched.
func RateLimit(limiter *ratelimit.Limiter, tier ratelimit.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Check(c.Request.Context(), c.Request, tier)
		if result == nil {
			c.Next()
			return
		}

		c.Header("Retry-After", fmt.Sprintf("%d", result.RetryAfter))
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Rate limit exceeded",
			"message":     fmt.Sprintf("Too many requests. Try again in %d seconds.", result.RetryAfter),
			"retry_after": result.RetryAfter,
			"limit":       result.Limit,
			"window":      result.Window,
		})
		c.Abort()
	}
}

// RateLimitWithBurst composes the window limiter with the per-client burst
// guard. The guard runs first so spikes are rejected before they consume
// window quota.
func RateLimitWithBurst(limiter *ratelimit.Limiter, guard *ratelimit.BurstGuard, tier ratelimit.Tier) gin.HandlerFunc {
	windowCheck := RateLimit(limiter, tier)

	return func(c *gin.Context) {
		cfg, ok := ratelimit.TierConfigs[tier]
		if ok && !guard.Allow(ratelimit.ClientIdentifier(c.Request), tier, cfg) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests. Try again in 1 seconds.",
				"retry_after": 1,
				"limit":       cfg.Burst(),
				"window":      "burst",
			})
			c.Abort()
			return
		}

		windowCheck(c)
	}
}
