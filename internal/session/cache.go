// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/naatfeed/internal/metrics"
	"github.com/tomtom215/naatfeed/internal/models"
)

// DefaultTTL is how long a stored ordering stays valid.
const DefaultTTL = time.Hour

// Cache holds realized orderings per key with a fixed TTL from store time.
// Expired entries are evicted when read.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock sets the clock used for store timestamps and expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a session cache over store. A non-positive ttl uses DefaultTTL.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCache(store Store, ttl time.Duration, logger zerolog.Logger, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "session_cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Store saves items under key, replacing any previous entry and restarting its TTL.
func (c *Cache) Store(ctx context.Context, key string, items []models.ContentItem, generation uint64) error {
	now := c.now()
	snapshot := make([]models.ContentItem, len(items))
	copy(snapshot, items)

	return c.store.Save(ctx, &Entry{
		Key:        key,
		Items:      snapshot,
		Generation: generation,
		StoredAt:   now,
		ExpiresAt:  now.Add(c.ttl),
	})
}

// Retrieve returns the entry for key if present and unexpired.
// Storage failures are logged and reported as absent.
func (c *Cache) Retrieve(ctx context.Context, key string) (*Entry, bool) {
	entry, err := c.store.Load(ctx, key)
	switch {
	case errors.Is(err, ErrOrderingExpired):
		c.evict(ctx, key)
		return nil, false
	case err != nil:
		if !errors.Is(err, ErrOrderingNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to load cached ordering")
		}
		metrics.RecordSessionCacheLookup("miss")
		return nil, false
	}

	// The store's clock may lag the cache's.
	if entry.IsExpired(c.now()) {
		c.evict(ctx, key)
		return nil, false
	}

	metrics.RecordSessionCacheLookup("hit")
	return entry, true
}

func (c *Cache) evict(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to evict expired ordering")
	}
	metrics.RecordSessionCacheLookup("expired")
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to invalidate ordering")
	}
}

// InvalidatePrefix removes all entries whose key starts with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) int {
	n, err := c.store.DeletePrefix(ctx, prefix)
	if err != nil {
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate orderings")
	}
	return n
}

// Sweep removes every expired entry and returns how many were removed.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	return c.store.DeleteExpired(ctx, c.now())
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
