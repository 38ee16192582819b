// Package cache provides the bounded, thread-safe LRU cache shared by the
// knowledge and search gateways.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Stats is a point-in-time snapshot of cache usage.
type Stats struct {
	Size      int `json:"size"`
	Capacity  int `json:"capacity"`
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
}

// LRU is a key/value store with least-recently-used eviction and hit/miss counters.
// All operations hold a single mutex, so any interleaving of concurrent calls is
// equivalent to some serial order of them.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	entries   *lru.Cache
	capacity  int
	hits      int
	misses    int
	evictions int
}

// New creates an LRU holding at most capacity entries. Capacity below 1 is clamped to 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &LRU[K, V]{capacity: capacity}
	c.entries = lru.New(capacity)
	c.entries.OnEvicted = func(lru.Key, interface{}) {
		c.evictions++
	}
	return c
}

// Get returns the value stored under key and marks it most-recently-used.
// A miss only increments the miss counter.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	value, _ := raw.(V)
	return value, true
}

// Set inserts or replaces the value under key; the key becomes most-recently-used.
// Inserting into a full cache evicts the single least-recently-used entry.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, value)
}

// Clear removes all entries and resets every counter to zero.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Clear()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Stats returns a snapshot of size, capacity and counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:      c.entries.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
