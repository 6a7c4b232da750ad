// Package cache provides a small timestamp-gated cache. The clock is
// injected so expiry is testable, and instances are owned by their callers
// rather than living as package-level state.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// TTL caches values by key for a fixed duration.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewTTL builds a cache with the given lifetime. now is optional and
// defaults to time.Now.
func NewTTL[K comparable, V any](ttl time.Duration, now func() time.Time) *TTL[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached value for key if it is still fresh.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero V
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, fetchedAt: c.now()}
}

// Invalidate drops the entry for key, if any.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
