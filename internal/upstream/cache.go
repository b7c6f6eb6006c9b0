// Package upstream fetches raw station documents and point payloads from
// the upstream weather API, caching bodies with a TTL and revalidating
// them conditionally so repeated loads stay cheap.
package upstream

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLCache is an in-memory byte cache with per-entry expiry. Concurrent
// loads of the same key are coalesced: exactly one loader runs and every
// waiter shares its result.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// NewTTLCache creates an empty cache.
func NewTTLCache() *TTLCache {
	return &TTLCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached bytes for key, or ok=false when absent or expired.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.data, true
}

// Set stores bytes under key for ttl.
func (c *TTLCache) Set(key string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes a key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key, or runs loader to fill it.
// Concurrent callers for the same key share one loader invocation.
func (c *TTLCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a racing caller may have filled it.
		if data, ok := c.Get(key); ok {
			return data, nil
		}
		data, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
