package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics holds request counters and auth decision counts.
// Thread-safe via atomics and mutex.
type Metrics struct {
	totalRequests  int64
	activeRequests int64
	totalErrors    int64
	totalLatencyMs int64
	maxLatencyMs   int64
	startTime      time.Time

	mu          sync.Mutex
	statusCodes map[int]int64
	endpoints   map[string]int64
	decisions   map[string]int64
}

func New() *Metrics {
	return &Metrics{
		startTime:   time.Now(),
		statusCodes: make(map[int]int64),
		endpoints:   make(map[string]int64),
		decisions:   make(map[string]int64),
	}
}

// Record counts one gate or permission decision.
func (m *Metrics) Record(decision string) {
	m.mu.Lock()
	m.decisions[decision]++
	m.mu.Unlock()
}

// Middleware tracks request count, latency, active requests and status codes.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.activeRequests, 1)
			defer atomic.AddInt64(&m.activeRequests, -1)
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			latencyMs := time.Since(start).Milliseconds()
			atomic.AddInt64(&m.totalRequests, 1)
			atomic.AddInt64(&m.totalLatencyMs, latencyMs)

			// lock-free CAS loop
			for {
				current := atomic.LoadInt64(&m.maxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.maxLatencyMs, current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.endpoints[endpoint]++
			m.statusCodes[statusCode]++
			m.mu.Unlock()

			if statusCode >= http.StatusBadRequest {
				atomic.AddInt64(&m.totalErrors, 1)
			}

			return err
		}
	}
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	AuthDecisions  map[string]int64 `json:"auth_decisions"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.totalRequests)

	var avgLatency float64
	if total > 0 {
		avgLatency = float64(atomic.LoadInt64(&m.totalLatencyMs)) / float64(total)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.activeRequests),
		TotalErrors:    atomic.LoadInt64(&m.totalErrors),
		AvgLatencyMs:   avgLatency,
		MaxLatencyMs:   atomic.LoadInt64(&m.maxLatencyMs),
		UptimeSeconds:  time.Since(m.startTime).Seconds(),
		StatusCodes:    copyMap(m.statusCodes),
		EndpointCounts: copyMap(m.endpoints),
		AuthDecisions:  copyMap(m.decisions),
	}
}

// Handler serves the snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}

func copyMap[K comparable](src map[K]int64) map[K]int64 {
	dst := make(map[K]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
