package cache

import (
	"sync"
	"time"
)

// MemoryCache is an in-memory cache with TTL support. It backs both the
// bubble cache (keyed by slug) and the link metadata cache (keyed by URL).
type MemoryCache[V any] struct {
	entries  sync.Map
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// cacheEntry holds a cached value with expiration metadata.
type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
	storedAt  time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl. Expired entries
// are swept once a minute until Close is called.
func NewMemoryCache[V any](ttl time.Duration) *MemoryCache[V] {
	return newMemoryCache[V](ttl, time.Minute)
}

func newMemoryCache[V any](ttl, sweep time.Duration) *MemoryCache[V] {
	c := &MemoryCache[V]{ttl: ttl, stop: make(chan struct{})}
	go c.cleanup(sweep)
	return c
}

// Get returns the value for key if it is present and not expired.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	var zero V
	value, ok := c.entries.Load(key)
	if !ok {
		return zero, false
	}

	entry := value.(*cacheEntry[V])
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return zero, false
	}

	return entry.value, true
}

// Set stores value under key with the configured TTL.
func (c *MemoryCache[V]) Set(key string, value V) {
	now := time.Now()
	c.entries.Store(key, &cacheEntry[V]{
		value:     value,
		expiresAt: now.Add(c.ttl),
		storedAt:  now,
	})
}

// Delete drops key.
func (c *MemoryCache[V]) Delete(key string) {
	c.entries.Delete(key)
}

// Len counts live entries.
func (c *MemoryCache[V]) Len() int {
	n := 0
	now := time.Now()
	c.entries.Range(func(_, value any) bool {
		if !now.After(value.(*cacheEntry[V]).expiresAt) {
			n++
		}
		return true
	})
	return n
}

// Close stops the background sweep.
func (c *MemoryCache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries from the cache.
func (c *MemoryCache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if now.After(value.(*cacheEntry[V]).expiresAt) {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}
