// Package app assembles the service from configuration: store, cache,
// services, HTTP router and background jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"task-signup/backend/internal/cache"
	"task-signup/backend/internal/config"
	"task-signup/backend/internal/handlers"
	"task-signup/backend/internal/middleware"
	"task-signup/backend/internal/monitoring"
	"task-signup/backend/internal/repositories"
	"task-signup/backend/internal/server"
	"task-signup/backend/internal/services"
	"task-signup/backend/internal/worker"

	"github.com/gin-gonic/gin"
)

type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     repositories.Store
	cache     *cache.MultiLevelCache
	scheduler *worker.Scheduler
	router    *gin.Engine
	server    *server.Server
}

// New opens the configured store and wires everything on top of it. A store
// that cannot be reached yet is not an error for document backends; the
// readiness endpoint reports it instead.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		scheduler: worker.NewScheduler(logger),
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.store = store

	if err := a.scheduleIndexBootstrap(); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	var (
		taskService services.TaskService = services.NewTaskService(store.Tasks(), cfg.Store.OpTimeout)
		userService services.UserService = services.NewUserService(store.Users(), passwordHasher(cfg), cfg.Store.OpTimeout)
	)

	health := monitoring.NewHealthChecker(cfg.Store.OpTimeout)
	health.Register("store", store.Health, true)

	metrics := monitoring.NewMetrics()
	extra := map[string]monitoring.StatsFunc{
		"store": func() interface{} { return storeStats(store) },
	}

	if cfg.Cache.Enabled {
		a.cache = newCache(cfg, logger)
		cachedTasks := services.NewCachedTaskService(taskService, a.cache, cfg.Cache.ListTTL, logger)
		cachedUsers := services.NewCachedUserService(userService, a.cache, cfg.Cache.ListTTL, logger)
		taskService, userService = cachedTasks, cachedUsers

		if cfg.Redis.Enabled {
			health.Register("cache", a.cache.Health, false)
		}
		extra["cache"] = func() interface{} { return a.cache.Stats() }

		if err := a.scheduleCacheWarmup(cachedTasks, cachedUsers); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
		if cfg.RateLimit.CleanupInterval > 0 {
			err := a.scheduler.Register(worker.Job{
				Name:     "rate-limit-cleanup",
				Interval: cfg.RateLimit.CleanupInterval,
				Run: func(context.Context) error {
					limiter.Cleanup()
					return nil
				},
			})
			if err != nil {
				_ = a.Close(ctx)
				return nil, err
			}
		}
	}

	opts := handlers.Options{StrictStatusCodes: cfg.Server.StrictStatusCodes, Logger: logger}
	a.router = server.NewRouter(server.RouterDeps{
		Tasks:        handlers.NewTaskHandler(taskService, opts),
		Users:        handlers.NewUserHandler(userService, opts),
		Health:       health,
		Metrics:      metrics,
		MetricsExtra: extra,
		RateLimiter:  limiter,
		CORSOrigins:  cfg.CORS.AllowOrigins,
		Logger:       logger,
	})
	a.server = server.New(cfg.Server, a.router, logger)

	logger.Info("application initialised",
		"store", store.Name(),
		"cache_enabled", cfg.Cache.Enabled,
		"redis_enabled", cfg.Redis.Enabled,
		"strict_status_codes", cfg.Server.StrictStatusCodes,
	)
	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run starts background jobs and serves HTTP until ctx is cancelled, then
// releases every resource.
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start(ctx)
	serveErr := a.server.Run(ctx)
	return errors.Join(serveErr, a.Close(context.Background()))
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.scheduler.Start(ctx)
	serveErr := a.server.Serve(ctx, ln)
	return errors.Join(serveErr, a.Close(context.Background()))
}

func (a *App) Close(ctx context.Context) error {
	a.scheduler.Stop()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	a.logger.Info("application resources released")
	return errors.Join(errs...)
}

func (a *App) scheduleIndexBootstrap() error {
	indexed, ok := a.store.(interface {
		EnsureIndexes(ctx context.Context) error
	})
	if !ok {
		return nil
	}

	var done atomic.Bool
	return a.scheduler.Register(worker.Job{
		Name:       "ensure-indexes",
		Interval:   30 * time.Second,
		Timeout:    a.cfg.Mongo.ConnectTimeout,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			if done.Load() {
				return nil
			}
			if err := indexed.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("store not ready for index bootstrap: %w", err)
			}
			done.Store(true)
			a.logger.Info("unique indexes ensured", "store", a.store.Name())
			return nil
		},
	})
}

func (a *App) scheduleCacheWarmup(tasks *services.CachedTaskService, users *services.CachedUserService) error {
	interval := a.cfg.Cache.ListTTL / 2
	return a.scheduler.Register(worker.Job{
		Name:       "cache-warmup",
		Interval:   interval,
		Timeout:    2 * a.cfg.Store.OpTimeout,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			return errors.Join(tasks.WarmCriticalData(ctx), users.WarmCriticalData(ctx))
		},
	})
}

func newCache(cfg *config.Config, logger *slog.Logger) *cache.MultiLevelCache {
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(&cache.CacheConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	}
	return cache.NewMultiLevelCache(redisCache, nil, logger)
}

func passwordHasher(cfg *config.Config) services.PasswordHasher {
	if cfg.Security.HashPasswords {
		return services.BcryptHasher{Cost: cfg.Security.BCryptCost}
	}
	return services.PlainHasher{}
}

func storeStats(store repositories.Store) interface{} {
	stats := map[string]interface{}{"driver": store.Name()}
	if s, ok := store.(interface{ Stats() map[string]interface{} }); ok {
		stats["pool"] = s.Stats()
	}
	return stats
}
