package ratelimit

// Tier is a named class of operation with its own rate-limit thresholds.
type Tier string

const (
	TierAdminActions  Tier = "admin_actions"
	TierAppSubmission Tier = "app_submission"
	TierBilling       Tier = "billing"
	TierEmail         Tier = "email"
	TierContent       Tier = "content"
	TierGeneralAuth   Tier = "general_auth"
)

// Config holds the window limits for a tier. A zero limit means the window
// is not checked. At least one window limit must be set for the tier to be
// meaningful.
type Config struct {
	RequestsPerMinute int
	RequestsPerHour   int
	RequestsPerDay    int
	BurstLimit        int
}

// Burst returns the burst limit, defaulting to the per-minute limit.
func (c Config) Burst() int {
	if c.BurstLimit > 0 {
		return c.BurstLimit
	}

	return c.RequestsPerMinute
}

// TierConfigs maps every tier to its static limits. Created once, never
// mutated.
var TierConfigs = map[Tier]Config{
	TierAdminActions: {
		RequestsPerMinute: 10,
		RequestsPerHour:   50,
		BurstLimit:        5,
	},
	TierAppSubmission: {
		RequestsPerHour: 1,
		RequestsPerDay:  3,
		BurstLimit:      1,
	},
	TierBilling: {
		RequestsPerMinute: 5,
		BurstLimit:        3,
	},
	TierEmail: {
		RequestsPerHour: 10,
		BurstLimit:      2,
	},
	TierContent: {
		RequestsPerMinute: 20,
		BurstLimit:        10,
	},
	TierGeneralAuth: {
		RequestsPerMinute: 15,
		BurstLimit:        8,
	},
}
