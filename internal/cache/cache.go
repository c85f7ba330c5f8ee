// Package cache holds the read-through caches in front of the list
// endpoints: an in-process layer, an optional redis layer, and the breaker
// that keeps a sick redis from slowing requests down.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get decodes the cached value into dest or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) error
	Stats() map[string]interface{}
	Close() error
}
