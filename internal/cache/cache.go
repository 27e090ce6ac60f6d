package cache

import "sync"

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 64

// Cache is a thread-safe LRU cache holding at most a fixed number of entries.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*node[K, V]
	order    list[K, V]
	capacity int
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		entries:  make(map[K]*node[K, V], capacity),
		capacity: capacity,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nd, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.moveToFront(nd)
	return nd.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nd, ok := c.entries[key]; ok {
		nd.value = value
		c.order.moveToFront(nd)
		return
	}
	for c.order.n >= c.capacity {
		c.drop(c.order.back)
	}
	nd := &node[K, V]{key: key, value: value}
	c.entries[key] = nd
	c.order.pushFront(nd)
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs without the lock held, so concurrent misses on the same key
// may each call it; the last Set wins.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	nd, ok := c.entries[key]
	if ok {
		c.drop(nd)
	}
	return ok
}

// RemoveFunc removes every entry whose key satisfies match and returns
// how many were removed.
func (c *Cache[K, V]) RemoveFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for nd := c.order.front; nd != nil; {
		next := nd.next
		if match(nd.key) {
			c.drop(nd)
			n++
		}
		nd = next
	}
	return n
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.order.back != nil {
		c.drop(c.order.back)
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.n
}

// drop unlinks nd. Caller must hold c.mu.
func (c *Cache[K, V]) drop(nd *node[K, V]) {
	c.order.remove(nd)
	delete(c.entries, nd.key)
}
