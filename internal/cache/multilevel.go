package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// l1MaxTTL caps how long the in-process layer may serve a value that also
// lives in redis, since other replicas cannot invalidate it.
const l1MaxTTL = 30 * time.Second

// MultiLevelCache reads L1 first, then L2 behind a circuit breaker. L2
// failures are counted and logged but surface to callers only as misses.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics
	logger  *slog.Logger

	// Keys whose L2 delete failed. L2 reads are bypassed for them until the
	// delete is retried successfully, a fresh Set lands, or the old entry
	// would have expired anyway. A zero deadline means no expiry.
	mu     sync.Mutex
	dirty  map[string]time.Time
	l2TTLs map[string]time.Duration
}

// NewMultiLevelCache builds the cache; redisCache may be nil for an
// in-process only setup.
func NewMultiLevelCache(redisCache *RedisCache, breakerConfig *CircuitBreakerConfig, logger *slog.Logger) *MultiLevelCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		breaker: NewCircuitBreaker(breakerConfig),
		metrics: NewCacheMetrics(),
		logger:  logger.With("component", "cache"),
		dirty:   make(map[string]time.Time),
		l2TTLs:  make(map[string]time.Duration),
	}
}

func (c *MultiLevelCache) l1TTL(ttl time.Duration) time.Duration {
	if c.l2 == nil {
		return ttl
	}
	if ttl <= 0 || ttl > l1MaxTTL {
		return l1MaxTTL
	}
	return ttl
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, c.l1TTL(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordSet()

	if c.l2 == nil {
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Set(ctx, key, value, ttl)
	})
	if err != nil {
		c.metrics.RecordError()
		c.logger.Warn("l2 set failed", "key", key, "error", err)
		return nil
	}

	c.mu.Lock()
	c.l2TTLs[key] = ttl
	delete(c.dirty, key)
	c.mu.Unlock()
	return nil
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	if c.isDirty(key) {
		c.repair(ctx, key)
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	missed := false
	err := c.breaker.Execute(func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			// A miss is a healthy answer from redis.
			missed = true
			return nil
		}
		return err
	})
	if err != nil {
		c.metrics.RecordError()
		if !errors.Is(err, ErrCircuitBreakerOpen) {
			c.logger.Warn("l2 get failed", "key", key, "error", err)
		}
		return ErrCacheMiss
	}
	if missed {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	_ = c.l1.Set(ctx, key, dest, l1MaxTTL)
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	_ = c.l1.Delete(ctx, keys...)
	c.metrics.RecordDelete()

	if c.l2 == nil {
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Delete(ctx, keys...)
	})
	if err != nil {
		c.metrics.RecordError()
		c.logger.Warn("l2 delete failed", "keys", keys, "error", err)
		c.markDirty(keys)
		return err
	}

	c.mu.Lock()
	for _, key := range keys {
		delete(c.dirty, key)
	}
	c.mu.Unlock()
	return nil
}

func (c *MultiLevelCache) markDirty(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for _, key := range keys {
		var until time.Time
		if ttl := c.l2TTLs[key]; ttl > 0 {
			until = now.Add(ttl)
		}
		c.dirty[key] = until
	}
}

func (c *MultiLevelCache) isDirty(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.dirty[key]
	if !ok {
		return false
	}
	if !until.IsZero() && time.Now().After(until) {
		delete(c.dirty, key)
		return false
	}
	return true
}

// repair retries a failed L2 delete so the key can be read from L2 again.
func (c *MultiLevelCache) repair(ctx context.Context, key string) {
	err := c.breaker.Execute(func() error {
		return c.l2.Delete(ctx, key)
	})
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.dirty, key)
	c.mu.Unlock()
	c.logger.Info("l2 invalidation repaired", "key", key)
}

func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	if c.breaker.GetState() == CircuitBreakerOpen {
		return ErrCacheDown
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Metrics() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
	}

	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
		stats["circuit_breaker"] = c.breaker.GetStats()
	}

	return stats
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
