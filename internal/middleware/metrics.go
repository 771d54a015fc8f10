package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type routeMetrics struct {
	TotalRequests int64     `json:"total_requests"`
	TotalDuration float64   `json:"-"`
	AvgDurationMs float64   `json:"avg_duration_ms"`
	MaxDurationMs float64   `json:"max_duration_ms"`
	ErrorCount    int64     `json:"error_count"`
	LastCalled    time.Time `json:"last_called"`
}

type slowRequest struct {
	Route      string    `json:"route"`
	DurationMs float64   `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// Metrics tracks per-route latency and error counters in process memory.
// Purely observability; reset on restart.
type Metrics struct {
	mu            sync.Mutex
	routes        map[string]*routeMetrics
	slowRequests  []slowRequest
	slowThreshold time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		routes:        make(map[string]*routeMetrics),
		slowThreshold: 2 * time.Second,
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		m.record(c.Request.Method+" "+c.FullPath(), time.Since(start), c.Writer.Status())
	}
}

func (m *Metrics) record(route string, duration time.Duration, statusCode int) {
	ms := float64(duration.Microseconds()) / 1000

	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.routes[route]
	if !ok {
		rm = &routeMetrics{}
		m.routes[route] = rm
	}

	rm.TotalRequests++
	rm.TotalDuration += ms
	rm.AvgDurationMs = rm.TotalDuration / float64(rm.TotalRequests)
	if ms > rm.MaxDurationMs {
		rm.MaxDurationMs = ms
	}
	rm.LastCalled = time.Now()

	if statusCode >= 400 {
		rm.ErrorCount++
	}

	if duration > m.slowThreshold {
		m.slowRequests = append(m.slowRequests, slowRequest{
			Route:      route,
			DurationMs: ms,
			StatusCode: statusCode,
			Timestamp:  time.Now(),
		})
		// Keep only the most recent 100 slow requests.
		if len(m.slowRequests) > 100 {
			m.slowRequests = m.slowRequests[len(m.slowRequests)-100:]
		}
	}
}

// Summary snapshots all route counters and the recent slow requests.
func (m *Metrics) Summary() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make(map[string]routeMetrics, len(m.routes))
	var total int64
	for route, rm := range m.routes {
		routes[route] = *rm
		total += rm.TotalRequests
	}

	slow := make([]slowRequest, len(m.slowRequests))
	copy(slow, m.slowRequests)

	return map[string]interface{}{
		"total_requests":     total,
		"routes":             routes,
		"slow_requests":      slow,
		"slow_threshold_sec": m.slowThreshold.Seconds(),
	}
}
