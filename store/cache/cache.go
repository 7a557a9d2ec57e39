// Package cache provides a small in-process TTL cache used by the store to
// avoid re-reading hot rows.
package cache

import (
	"sync"
	"time"
)

// Config holds cache settings.
type Config struct {
	// DefaultTTL is the time-to-live applied when Set is called without an
	// explicit TTL.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired items are swept.
	CleanupInterval time.Duration
	// MaxItems caps the cache size; 0 means unbounded. When the cap is hit
	// the oldest item is evicted.
	MaxItems int
	// OnEviction, if set, is called for every evicted or expired item.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
	storedAt  time.Time
}

// Cache is a thread-safe TTL cache.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache and starts its background sweeper.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	c := &Cache{
		items:  make(map[string]item),
		config: config,
		stop:   make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		if _, exists := c.items[key]; !exists {
			c.evictOldestLocked()
		}
	}
	c.items[key] = item{value: value, expiresAt: now.Add(ttl), storedAt: now}
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, it := range c.items {
		if oldestKey == "" || it.storedAt.Before(oldest) {
			oldestKey = k
			oldest = it.storedAt
		}
	}
	if oldestKey != "" {
		evicted := c.items[oldestKey]
		delete(c.items, oldestKey)
		if c.config.OnEviction != nil {
			c.config.OnEviction(oldestKey, evicted.value)
		}
	}
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, it := range c.items {
				if now.After(it.expiresAt) {
					delete(c.items, k)
					if c.config.OnEviction != nil {
						c.config.OnEviction(k, it.value)
					}
				}
			}
			c.mu.Unlock()
		}
	}
}
