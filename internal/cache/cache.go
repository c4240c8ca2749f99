package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a process-local TTL cache. The webhook pipeline uses it to avoid
// re-fetching the original order from the loyalty backend when a redelivery
// burst replays the same refund.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
}

// InMemoryCache implements Cache on top of go-cache.
type InMemoryCache struct {
	store *gocache.Cache
}

// NewInMemoryCache creates an in-memory cache with the given default TTL
// and cleanup interval.
func NewInMemoryCache(defaultTTL, cleanupInterval time.Duration) *InMemoryCache {
	return &InMemoryCache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	c.store.Set(key, value, expiration)
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) {
	c.store.Delete(key)
}

func (c *InMemoryCache) Flush(ctx context.Context) {
	c.store.Flush()
}

// TypedValue converts a cached value to the requested type.
// Returns the typed value and true if successful, nil and false otherwise.
func TypedValue[T any](value interface{}) (*T, bool) {
	if value == nil {
		return nil, false
	}
	if typed, ok := value.(*T); ok {
		return typed, true
	}
	return nil, false
}
