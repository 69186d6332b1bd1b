package rrule

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cyp0633/librrule/moment"
)

// cacheEntry holds one cached range expansion.
type cacheEntry struct {
	occurrences []moment.Moment
	expiresAt   time.Time
	accessedAt  time.Time
}

// ExpansionCache memoizes Between expansions across calls. Hosts that
// evaluate the same rules against overlapping ranges, such as a calendar
// server answering report queries, put this in front of the generator; the
// generator itself stays stateless.
type ExpansionCache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds the cache tuning knobs.
type CacheConfig struct {
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// DefaultCacheConfig provides sensible defaults for production use
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewExpansionCache builds a cache and starts its cleanup goroutine; call
// Close to stop it. Zero config fields take DefaultCacheConfig.
func NewExpansionCache(config CacheConfig) *ExpansionCache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	cache := &ExpansionCache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	go cache.cleanupLoop()
	return cache
}

// cacheKey hashes the canonical rule text together with the query range,
// so equivalent rules share entries regardless of how they were built.
func cacheKey(r *Rule, start, end moment.Moment, inclusive bool) string {
	hasher := sha256.New()
	hasher.Write([]byte(r.Text()))
	hasher.Write([]byte{0})
	hasher.Write([]byte(start.String()))
	hasher.Write([]byte{0})
	hasher.Write([]byte(end.String()))
	if inclusive {
		hasher.Write([]byte{1})
	} else {
		hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Between answers like Rule.Between but serves repeated queries from the
// cache. Errors are never cached. Callers must not mutate the returned
// slice.
func (c *ExpansionCache) Between(r *Rule, start, end moment.Moment, inclusive bool) ([]moment.Moment, error) {
	key := cacheKey(r, start, end, inclusive)

	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	now := time.Now()
	if exists {
		if now.After(entry.expiresAt) {
			c.mutex.Lock()
			delete(c.entries, key)
			c.mutex.Unlock()
		} else {
			c.mutex.Lock()
			entry.accessedAt = now
			c.mutex.Unlock()
			return entry.occurrences, nil
		}
	}

	occurrences, err := r.Between(start, end, inclusive)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = &cacheEntry{
		occurrences: occurrences,
		expiresAt:   now.Add(c.ttl),
		accessedAt:  now,
	}
	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
	return occurrences, nil
}

// cleanup removes expired entries, then evicts the least recently accessed
// ones until the cache fits. Callers hold the write lock.
func (c *ExpansionCache) cleanup() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}
	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	order := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		order = append(order, keyAccess{key, entry.accessedAt})
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].accessedAt.Before(order[j].accessedAt)
	})
	for i, excess := 0, len(c.entries)-c.maxEntries; i < excess; i++ {
		delete(c.entries, order[i].key)
	}
}

func (c *ExpansionCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and drops every entry.
func (c *ExpansionCache) Close() {
	close(c.stopCleanup)
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mutex.Unlock()
}

// CacheStats reports the cache's current shape.
type CacheStats struct {
	Entries int
	Expired int
}

// Stats counts live and expired entries.
func (c *ExpansionCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	stats := CacheStats{Entries: len(c.entries)}
	now := time.Now()
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			stats.Expired++
		}
	}
	return stats
}
