// Package cache holds the in-memory TTL cache used for leaderboard
// snapshots. Entries expire on read and the least recently used entry is
// evicted when the cache is full.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key      string
	val      V
	deadline time.Time
}

// TTLCache is a bounded LRU cache whose entries also carry a fixed TTL.
// Safe for concurrent use.
type TTLCache[V any] struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	order *list.List
	index map[string]*list.Element
}

func New[V any](capacity int, ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		cap:   capacity,
		ttl:   ttl,
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Get returns the cached value for key if present and not expired. A hit
// refreshes the entry's LRU position, not its TTL.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.index[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[V])
	if time.Now().After(e.deadline) {
		c.evict(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.val, true
}

// Set stores val under key with a fresh TTL, evicting the least recently
// used entry when the cache is at capacity.
func (c *TTLCache[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[V]{key: key, val: val, deadline: time.Now().Add(c.ttl)}

	if elem, ok := c.index[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.index[key] = c.order.PushFront(e)
	if c.order.Len() > c.cap {
		if oldest := c.order.Back(); oldest != nil {
			c.evict(oldest)
		}
	}
}

// Delete removes key from the cache if present.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.evict(elem)
	}
}

// Purge drops every expired entry and returns how many were removed.
func (c *TTLCache[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*entry[V]).deadline) {
			c.evict(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *TTLCache[V]) evict(elem *list.Element) {
	delete(c.index, elem.Value.(*entry[V]).key)
	c.order.Remove(elem)
}
