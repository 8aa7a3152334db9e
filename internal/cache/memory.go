package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache implementation. Lookups are O(1) amortized;
// expired entries are evicted lazily on the next access, there is no
// background sweep.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[V]
	now     func() time.Time
}

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		entries: make(map[string]memoryEntry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value if present and not expired.
// An expired entry is removed and reported as absent.
func (c *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: another goroutine may have
		// refreshed the entry in the meantime.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key until now + ttl. A non-positive ttl removes
// the key.
func (c *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return
	}
	c.entries[key] = memoryEntry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Len reports the number of entries currently held, including any that are
// expired but not yet evicted.
func (c *Memory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ Cache[float64] = (*Memory[float64])(nil)
