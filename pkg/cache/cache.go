package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is an in-memory string cache with per-key TTL. Expired entries are
// dropped lazily on read and swept by Purge.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
}

// New creates a new cache
func New() *Cache {
	return &Cache{items: map[string]entry{}}
}

// Set stores a value under key for the given TTL
func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the value for key if it exists and has not expired
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, exists := c.items[key]
	c.mu.RUnlock()
	if !exists {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Delete removes a single key
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Invalidate removes every key sharing the given prefix
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
		}
	}
}

// Purge drops every expired entry and reports how many were removed
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	removed := 0
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
