package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"task-signup/backend/internal/cache"
	"task-signup/backend/internal/models"
)

const (
	allTasksKey = "all_tasks"
	allUsersKey = "all_users"
)

// CachedTaskService serves GetTasks from cache and drops the cached list
// after every successful create. Cache failures fall back to the store.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
	ttl         time.Duration
	logger      *slog.Logger
	gens        generations
}

func NewCachedTaskService(taskService TaskService, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedTaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedTaskService{taskService: taskService, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedTaskService) CreateTask(ctx context.Context, name, status string) (*models.Task, error) {
	task, err := s.taskService.CreateTask(ctx, name, status)
	if err != nil {
		return nil, err
	}

	s.gens.invalidate(ctx, s.cache, s.logger, allTasksKey)
	return task, nil
}

func (s *CachedTaskService) GetTasks(ctx context.Context) ([]models.Task, error) {
	var cached []models.Task
	if err := s.cache.Get(ctx, allTasksKey, &cached); err == nil && cached != nil {
		return cached, nil
	}

	gen := s.gens.current(allTasksKey)
	tasks, err := s.taskService.GetTasks(ctx)
	if err != nil {
		return nil, err
	}

	s.gens.store(ctx, s.cache, s.logger, allTasksKey, gen, tasks, s.ttl)
	return tasks, nil
}

// WarmCriticalData primes the task list so the first GET does not hit the
// store.
func (s *CachedTaskService) WarmCriticalData(ctx context.Context) error {
	gen := s.gens.current(allTasksKey)
	tasks, err := s.taskService.GetTasks(ctx)
	if err != nil {
		return err
	}
	s.gens.store(ctx, s.cache, s.logger, allTasksKey, gen, tasks, s.ttl)
	return nil
}

type CachedUserService struct {
	userService UserService
	cache       cache.Cache
	ttl         time.Duration
	logger      *slog.Logger
	gens        generations
}

func NewCachedUserService(userService UserService, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedUserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedUserService{userService: userService, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedUserService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userService.Signup(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.gens.invalidate(ctx, s.cache, s.logger, allUsersKey)
	return user, nil
}

func (s *CachedUserService) GetUsers(ctx context.Context) ([]models.User, error) {
	var cached []models.User
	if err := s.cache.Get(ctx, allUsersKey, &cached); err == nil && cached != nil {
		return cached, nil
	}

	gen := s.gens.current(allUsersKey)
	users, err := s.userService.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	s.gens.store(ctx, s.cache, s.logger, allUsersKey, gen, users, s.ttl)
	return users, nil
}

func (s *CachedUserService) DeleteUser(ctx context.Context, username string) error {
	if err := s.userService.DeleteUser(ctx, username); err != nil {
		return err
	}

	s.gens.invalidate(ctx, s.cache, s.logger, allUsersKey)
	return nil
}

func (s *CachedUserService) WarmCriticalData(ctx context.Context) error {
	gen := s.gens.current(allUsersKey)
	users, err := s.userService.GetUsers(ctx)
	if err != nil {
		return err
	}
	s.gens.store(ctx, s.cache, s.logger, allUsersKey, gen, users, s.ttl)
	return nil
}

// generations counts invalidations per key. A list read from the store is
// only cached if no invalidation happened while it was being read, so a
// slow read cannot overwrite the cache with a list that misses a write.
type generations struct {
	mu   sync.Mutex
	seen map[string]uint64
}

func (g *generations) current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seen[key]
}

// store holds the lock across Set so an invalidate either bumps the
// generation first (and the Set is skipped) or deletes after the Set.
func (g *generations) store(ctx context.Context, c cache.Cache, logger *slog.Logger, key string, gen uint64, value interface{}, ttl time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[key] != gen {
		logger.Debug("skipping cache fill after invalidation", "key", key)
		return
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (g *generations) invalidate(ctx context.Context, c cache.Cache, logger *slog.Logger, key string) {
	g.mu.Lock()
	if g.seen == nil {
		g.seen = make(map[string]uint64)
	}
	g.seen[key]++
	g.mu.Unlock()

	if err := c.Delete(ctx, key); err != nil {
		logger.Warn("cache invalidation failed", "key", key, "error", err)
	}
}
