package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrInvalidConfig is returned for a non-positive size.
var ErrInvalidConfig = errors.New("cache: invalid config")

// Config sizes the cache. TTL is the default item lifetime; zero keeps
// items until they are evicted.
type Config struct {
	MaxItems int64         `env:"CACHE_MAX_ITEMS" envDefault:"10000"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

// Cache is safe for concurrent use.
type Cache[K ristretto.Key, V any] struct {
	store *ristretto.Cache[K, V]
	ttl   time.Duration
}

// New creates a cache holding up to cfg.MaxItems entries.
func New[K ristretto.Key, V any](cfg Config) (*Cache[K, V], error) {
	if cfg.MaxItems <= 0 {
		return nil, errors.Join(ErrInvalidConfig, errors.New("max items must be positive"))
	}
	store, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: cfg.MaxItems * 10,
		MaxCost:     cfg.MaxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &Cache[K, V]{store: store, ttl: cfg.TTL}, nil
}

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.store.Get(key)
}

// Set stores value with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) bool {
	return c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value for ttl. It reports whether the item was admitted.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) bool {
	ok := c.store.SetWithTTL(key, value, 1, ttl)
	c.store.Wait()
	return ok
}

// Remove drops key.
func (c *Cache[K, V]) Remove(key K) {
	c.store.Del(key)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Clear drops every item.
func (c *Cache[K, V]) Clear() {
	c.store.Clear()
}

// Close stops the cache's background goroutines. The cache is unusable afterwards.
func (c *Cache[K, V]) Close() {
	c.store.Close()
}
