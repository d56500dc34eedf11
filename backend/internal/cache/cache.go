// Package cache holds computed results keyed by the exact input string.
package cache

import (
	"sync"
	"time"
)

// Cache is an exact-match result cache. Keys are stored verbatim, so two
// inputs share an entry only when they are byte-identical.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	maxSize int           // 0 = unbounded
	ttl     time.Duration // 0 = entries never expire
	now     func() time.Time
}

type entry[V any] struct {
	value     V
	createdAt time.Time
	hits      int
}

// Stats summarizes cache usage
type Stats struct {
	Size      int           `json:"size"`
	MaxSize   int           `json:"max_size"`
	TotalHits int           `json:"total_hits"`
	TTL       time.Duration `json:"ttl"`
}

// New creates a cache holding at most maxSize entries, each valid for ttl.
func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		return zero, false
	}

	e.hits++
	return e.value, true
}

// Set stores value under key, evicting the oldest entry when full
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &entry[V]{
		value:     value,
		createdAt: c.now(),
	}
}

func (c *Cache[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl
}

// evictOldest removes the entry created first
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	found := false

	for key, e := range c.entries {
		if !found || e.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.createdAt
			found = true
		}
	}

	if found {
		delete(c.entries, oldestKey)
	}
}

// Len returns the number of stored entries, expired or not
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	totalHits := 0
	for _, e := range c.entries {
		totalHits += e.hits
	}
	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		TotalHits: totalHits,
		TTL:       c.ttl,
	}
}

// Clear empties the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}
