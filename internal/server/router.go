package server

import (
	"log/slog"

	"task-signup/backend/internal/handlers"
	"task-signup/backend/internal/middleware"
	"task-signup/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Tasks   *handlers.TaskHandler
	Users   *handlers.UserHandler
	Health  *monitoring.HealthChecker
	Metrics *monitoring.Metrics
	// MetricsExtra adds sections such as cache stats to /metrics.
	MetricsExtra map[string]monitoring.StatsFunc
	// RateLimiter guards the resource endpoints; nil disables limiting.
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter mounts the resource endpoints at the root and the operational
// endpoints under /health and /metrics. Operational endpoints are not rate
// limited.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.RecoveryWithLog(deps.Logger),
		middleware.CORS(deps.CORSOrigins),
	)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	if deps.Health != nil {
		router.GET("/health", deps.Health.HealthHandler())
		router.GET("/health/live", deps.Health.LivenessHandler())
		router.GET("/health/ready", deps.Health.ReadinessHandler())
	}
	if deps.Metrics != nil {
		router.GET("/metrics", deps.Metrics.Handler(deps.MetricsExtra))
	}

	api := router.Group("/")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}

	api.POST("/task", deps.Tasks.CreateTask)
	api.GET("/tasks", deps.Tasks.GetTasks)

	api.POST("/signup", deps.Users.Signup)
	api.GET("/users", deps.Users.GetUsers)
	api.DELETE("/delete-user", deps.Users.DeleteUser)

	return router
}
