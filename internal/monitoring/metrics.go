// Package monitoring collects in-process request metrics and runs the
// health checks behind /health, /health/ready and /metrics.
package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	mu             sync.RWMutex
	requestCount   int64
	activeRequests int64
	errorCount     int64
	totalDuration  time.Duration
	statusCodes    map[string]int64
	endpoints      map[string]int64
	startTime      time.Time
	lastRequest    time.Time
}

// MetricsSnapshot is the JSON shape served by /metrics.
type MetricsSnapshot struct {
	RequestCount     int64            `json:"request_count"`
	AvgRequestMillis float64          `json:"avg_request_duration_ms"`
	ActiveRequests   int64            `json:"active_requests"`
	ErrorCount       int64            `json:"error_count"`
	StatusCodes      map[string]int64 `json:"status_codes"`
	Endpoints        map[string]int64 `json:"endpoint_calls"`
	StartTime        time.Time        `json:"start_time"`
	LastRequest      time.Time        `json:"last_request"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

// Middleware records one sample per request, keyed by the matched route so
// unknown paths collapse into a single "METHOD " bucket.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		m.observe(c.Request.Method+" "+c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

func (m *Metrics) observe(endpoint string, status int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requestCount++
	m.activeRequests--
	m.totalDuration += duration
	m.lastRequest = time.Now()
	if status >= 400 {
		m.errorCount++
	}
	m.statusCodes[strconv.Itoa(status)]++
	m.endpoints[endpoint]++
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		RequestCount:   m.requestCount,
		ActiveRequests: m.activeRequests,
		ErrorCount:     m.errorCount,
		StatusCodes:    make(map[string]int64, len(m.statusCodes)),
		Endpoints:      make(map[string]int64, len(m.endpoints)),
		StartTime:      m.startTime,
		LastRequest:    m.lastRequest,
	}
	if m.requestCount > 0 {
		s.AvgRequestMillis = float64(m.totalDuration.Microseconds()) / float64(m.requestCount) / 1000.0
	}
	for k, v := range m.statusCodes {
		s.StatusCodes[k] = v
	}
	for k, v := range m.endpoints {
		s.Endpoints[k] = v
	}
	return s
}

func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

type SystemMetrics struct {
	Uptime         string      `json:"uptime"`
	MemoryUsage    MemoryStats `json:"memory"`
	GoroutineCount int         `json:"goroutine_count"`
	CPUCount       int         `json:"cpu_count"`
	GoVersion      string      `json:"go_version"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc_mb"`
	TotalAlloc   uint64 `json:"total_alloc_mb"`
	Sys          uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	GCPauseTotal string `json:"gc_pause_total"`
}

func (m *Metrics) System() SystemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return SystemMetrics{
		Uptime: m.Uptime().Round(time.Second).String(),
		MemoryUsage: MemoryStats{
			Alloc:        bToMb(ms.Alloc),
			TotalAlloc:   bToMb(ms.TotalAlloc),
			Sys:          bToMb(ms.Sys),
			NumGC:        ms.NumGC,
			GCPauseTotal: time.Duration(ms.PauseTotalNs).String(),
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// StatsFunc contributes an extra section to /metrics, such as cache stats.
type StatsFunc func() interface{}

func (m *Metrics) Handler(extra map[string]StatsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"application": m.Snapshot(),
			"system":      m.System(),
			"timestamp":   time.Now().UTC(),
		}
		for name, fn := range extra {
			response[name] = fn()
		}
		c.JSON(http.StatusOK, response)
	}
}
