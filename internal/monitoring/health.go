package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Critical bool      `json:"critical"`
	Message  string    `json:"message,omitempty"`
	Duration string    `json:"duration"`
	LastRun  time.Time `json:"last_run"`
}

type registeredCheck struct {
	fn       HealthCheckFunc
	critical bool
}

// HealthChecker runs registered checks concurrently on every call. A failing
// critical check makes the service unready; a failing non-critical one only
// degrades /health.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]registeredCheck
	timeout time.Duration
	started time.Time
}

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]registeredCheck),
		timeout: timeout,
		started: time.Now(),
	}
}

func (h *HealthChecker) Register(name string, fn HealthCheckFunc, critical bool) {
	h.mu.Lock()
	h.checks[name] = registeredCheck{fn: fn, critical: critical}
	h.mu.Unlock()
}

// Run executes every check and reports the overall status.
func (h *HealthChecker) Run(ctx context.Context) (string, []HealthCheck) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]registeredCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]HealthCheck, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string, rc registeredCheck) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			start := time.Now()
			err := rc.fn(cctx)

			result := HealthCheck{
				Name:     name,
				Status:   StatusHealthy,
				Critical: rc.critical,
				Duration: time.Since(start).String(),
				LastRun:  start.UTC(),
			}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Message = err.Error()
			}
			results[i] = result
		}(i, name, checks[name])
	}
	wg.Wait()

	overall := StatusHealthy
	for _, r := range results {
		if r.Status == StatusHealthy {
			continue
		}
		if r.Critical {
			overall = StatusUnhealthy
			break
		}
		overall = StatusDegraded
	}
	return overall, results
}

func (h *HealthChecker) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		overall, checks := h.Run(c.Request.Context())

		status := http.StatusOK
		if overall == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overall,
			"timestamp": time.Now().UTC(),
			"checks":    checks,
			"uptime":    time.Since(h.started).Round(time.Second).String(),
		})
	}
}

func (h *HealthChecker) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		overall, _ := h.Run(c.Request.Context())

		if overall == StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "timestamp": time.Now().UTC()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now().UTC()})
	}
}

func (h *HealthChecker) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(h.started).Round(time.Second).String(),
		})
	}
}
