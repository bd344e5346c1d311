package cache

import "time"

// NewMemoryCacheWithSweep exposes the sweep interval to tests.
func NewMemoryCacheWithSweep[V any](ttl, sweep time.Duration) *MemoryCache[V] {
	return newMemoryCache[V](ttl, sweep)
}

// RawLen counts stored entries, expired or not.
func (c *MemoryCache[V]) RawLen() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
