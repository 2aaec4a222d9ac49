// Package viewcache stores rendered dashboard and monitor payloads so page
// loads between change notifications avoid recomputing projections. Booking
// writes invalidate the affected views immediately.
package viewcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ViewDashboard prefixes cached dashboard grids, one entry per date.
	ViewDashboard = "dashboard"
	// ViewMonitor keys the cached kiosk occupancy snapshot.
	ViewMonitor = "monitor"

	keyPrefix = "meetingsphere:view:"
)

// Cache is a redis-backed store of rendered view payloads. A nil *Cache is
// valid and disables caching, so callers never branch on configuration.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis at addr. An empty addr disables the cache.
func New(addr, password string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: password}), ttl)
}

// NewWithClient wraps an existing client, used by tests with miniredis.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{client: client, ttl: ttl}
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get returns the cached payload for view/key, if present.
func (c *Cache) Get(ctx context.Context, view, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, cacheKey(view, key)).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Store caches the payload for view/key with the configured TTL. Failures
// are swallowed; the cache is an optimization, never a source of truth.
func (c *Cache) Store(ctx context.Context, view, key string, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, cacheKey(view, key), payload, c.ttl)
}

// Invalidate drops every cached entry of the named views.
func (c *Cache) Invalidate(ctx context.Context, views ...string) error {
	if c == nil || c.client == nil {
		return nil
	}

	var errs []error
	for _, view := range views {
		iter := c.client.Scan(ctx, 0, keyPrefix+view+":*", 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil && !errors.Is(err, redis.Nil) {
				errs = append(errs, err)
			}
		}
		if err := iter.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cacheKey(view, key string) string {
	if key == "" {
		key = "-"
	}
	return keyPrefix + view + ":" + key
}
