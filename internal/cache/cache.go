// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package cache

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a fake clock to drive expiry.
type Clock func() time.Time

// Entry represents a cached item with expiration
type Entry[V any] struct {
	Data      V
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	ttl     time.Duration
	now     Clock
	stats   Stats
}

// Stats tracks cache performance metrics
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock replaces time.Now as the cache's time source.
func WithClock[V any](clock Clock) Option[V] {
	return func(c *Cache[V]) {
		if clock != nil {
			c.now = clock
		}
	}
}

// New creates a new thread-safe in-memory cache with automatic expiration.
//
// Parameters:
//   - ttl: Default expiration duration for cache entries (e.g., time.Hour)
//   - opts: Optional settings such as WithClock
//
// Thread Safety:
//   - Safe for concurrent access from multiple goroutines
//   - Uses sync.RWMutex for read/write locking
//
// Expired entries are removed lazily on Get, and in bulk by StartCleanup.
//
// Example:
//
//	c := cache.New[[]string](time.Hour)
//	c.Set("feed:abc", ids)
//	if ids, ok := c.Get("feed:abc"); ok {
//	    // Use cached data
//	}
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats.LastCleanup = c.now()
	return c
}

// Get retrieves a value from the cache by key with automatic expiration checking.
//
// Behavior:
//   - Returns (zero, false) if key doesn't exist
//   - Returns (zero, false) if entry has expired (entry is deleted)
//   - Returns (data, true) if entry is valid
//
// Statistics:
//   - Increments Hits counter on successful retrieval
//   - Increments Misses counter on miss or expiration
//   - Increments Evictions counter when removing expired entry
func (c *Cache[V]) Get(key string) (V, bool) {
	entry, ok := c.GetEntry(key)
	return entry.Data, ok
}

// GetEntry is Get, returning the entry with its timestamps.
func (c *Cache[V]) GetEntry(key string) (Entry[V], bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return Entry[V]{}, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := c.entries[key]; ok && !c.now().Before(current.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return Entry[V]{}, false
	}

	c.recordHit()
	return entry, true
}

// Peek returns the entry for key even if it has expired. It does not evict
// or touch the hit/miss counters.
func (c *Cache[V]) Peek(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Set stores a value in the cache with the default TTL configured at cache creation.
func (c *Cache[V]) Set(key string, value V) {
	c.SetAt(key, value, c.now(), c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.SetAt(key, value, c.now(), ttl)
}

// SetAt stores a value whose lifetime is measured from storedAt rather than now.
// Entries restored from a durable store keep their original age this way.
func (c *Cache[V]) SetAt(key string, value V, storedAt time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{
		Data:      value,
		StoredAt:  storedAt,
		ExpiresAt: storedAt.Add(ttl),
	}

	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()
}

// Delete removes a specific cache entry by key.
// No-op if the key doesn't exist.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	if existed {
		c.stats.Evictions++
	}
	c.stats.TotalKeys = total
	c.stats.mu.Unlock()
}

// DeletePrefix removes every entry whose key starts with prefix and returns the
// number removed.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
			removed++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = total
	c.stats.mu.Unlock()
	return removed
}

// Clear removes all entries from the cache in a single atomic operation.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry[V])
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of current cache performance statistics.
func (c *Cache[V]) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// StartCleanup runs Cleanup every interval until ctx is canceled.
// It blocks; run it in a goroutine or under a supervisor.
func (c *Cache[V]) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Cleanup removes all expired entries and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}

	c.stats.mu.Lock()
	c.stats.Evictions += int64(evictions)
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	return evictions
}

// recordHit increments the hit counter
func (c *Cache[V]) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

// recordMiss increments the miss counter
func (c *Cache[V]) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

// recordEviction increments the eviction counter
func (c *Cache[V]) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}
