package cache

import "time"

// Strategy describes the intended access frequency of a cache type. It is
// informational only and does not change behavior.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyModerate     Strategy = "moderate"
	StrategyConservative Strategy = "conservative"
	StrategyRealTime     Strategy = "real_time"
)

// Config is the static policy for one named cache type.
type Config struct {
	TTL      time.Duration
	Strategy Strategy
	// Compression is advisory; payloads are stored uncompressed.
	Compression bool
	// InvalidationPattern is the glob used to bulk-delete related keys.
	InvalidationPattern string
}

// Configs maps every cache type to its policy. Static for the process
// lifetime.
var Configs = map[string]Config{
	// Admin dashboard statistics - rarely change
	"admin_stats": {
		TTL:                 5 * time.Minute,
		Strategy:            StrategyAggressive,
		InvalidationPattern: "admin_stats:*",
	},

	// Article lists and filters - moderate caching
	"article_lists": {
		TTL:                 3 * time.Minute,
		Strategy:            StrategyModerate,
		InvalidationPattern: "article_lists:*",
	},

	// Author performance data - cached but needs refresh
	"author_data": {
		TTL:                 10 * time.Minute,
		Strategy:            StrategyModerate,
		InvalidationPattern: "author_data:*",
	},

	// Application lists - moderate refresh
	"application_lists": {
		TTL:                 2 * time.Minute,
		Strategy:            StrategyModerate,
		InvalidationPattern: "application_lists:*",
	},

	// Analytics data - longer cache due to computation cost
	"analytics": {
		TTL:                 15 * time.Minute,
		Strategy:            StrategyAggressive,
		Compression:         true,
		InvalidationPattern: "analytics:*",
	},

	// Audit logs - conservative caching
	"audit_logs": {
		TTL:                 time.Minute,
		Strategy:            StrategyConservative,
		InvalidationPattern: "audit_logs:*",
	},

	// User sessions and real-time data
	"user_sessions": {
		TTL:                 30 * time.Second,
		Strategy:            StrategyRealTime,
		InvalidationPattern: "user_sessions:*",
	},
}
