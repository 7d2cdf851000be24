package services

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry represents a single cache entry with TTL
type cacheEntry[V any] struct {
	value      V
	insertedAt time.Time
	element    *list.Element // LRU position
}

func (e *cacheEntry[V]) isExpired(ttl time.Duration) bool {
	return time.Since(e.insertedAt) > ttl
}

// Cache is an in-memory LRU cache with a TTL, safe for concurrent use
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry[V]
	lruList *list.List
	maxSize int
	ttl     time.Duration
	hits    uint64
	misses  uint64
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// NewCache creates a cache holding at most maxSize entries for ttl each
func NewCache[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache[V]{
		entries: make(map[string]*cacheEntry[V]),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached value for key. Expired entries are dropped and count as misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists || entry.isExpired(c.ttl) {
		c.misses++
		if exists {
			c.removeEntry(key)
		}
		var zero V
		return zero, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry when full
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[key]; exists {
		entry.value = value
		entry.insertedAt = time.Now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &cacheEntry[V]{value: value, insertedAt: time.Now()}
	entry.element = c.lruList.PushFront(key)
	c.entries[key] = entry
}

// Invalidate removes a specific cache entry
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeEntry(key)
}

// Clear removes all entries from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry[V])
	c.lruList.Init()
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: rate,
	}
}

// must be called with lock held
func (c *Cache[V]) removeEntry(key string) {
	if entry, exists := c.entries[key]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, key)
	}
}

// must be called with lock held
func (c *Cache[V]) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	key := back.Value.(string)
	c.lruList.Remove(back)
	delete(c.entries, key)
}

// CleanupExpired removes all expired entries and returns how many were removed
func (c *Cache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := make([]string, 0)
	for key, entry := range c.entries {
		if entry.isExpired(c.ttl) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		c.removeEntry(key)
	}
	return len(expired)
}

// StartCleanupWorker periodically drops expired entries until stopCh is closed
func (c *Cache[V]) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanupExpired()
		case <-stopCh:
			return
		}
	}
}
