package geocode

import (
	"sync"
	"time"
)

type cacheEntry struct {
	place    *Place // nil records a definitive miss
	cachedAt time.Time
}

// Cache stores geocoding results with TTL expiry. A nil place is a valid
// entry: it remembers that a query had no result so it is not retried on
// every run.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a cached result. The second return value distinguishes
// "never looked up" from a cached miss.
func (c *Cache) Get(key string) (*Place, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if time.Since(entry.cachedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.place, true
}

// Set stores a resolved place.
func (c *Cache) Set(key string, place *Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{place: place, cachedAt: time.Now()}
}

// SetMiss records that a query had no result.
func (c *Cache) SetMiss(key string) {
	c.Set(key, nil)
}

// Size returns the number of live entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
