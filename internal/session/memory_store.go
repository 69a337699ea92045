// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package session

import (
	"context"
	"time"

	"github.com/tomtom215/naatfeed/internal/cache"
)

// MemoryStore keeps entries in a TTL cache.
type MemoryStore struct {
	entries *cache.Cache[*Entry]
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. now may be nil for time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: cache.New[*Entry](time.Hour, cache.WithClock[*Entry](now)),
		now:     now,
	}
}

// Save stores the entry with its own expiry.
func (s *MemoryStore) Save(_ context.Context, entry *Entry) error {
	s.entries.SetAt(entry.Key, entry, entry.StoredAt, entry.ExpiresAt.Sub(entry.StoredAt))
	return nil
}

// Load returns the entry for key. Entries past their TTL are left in place
// and reported as ErrOrderingExpired.
func (s *MemoryStore) Load(_ context.Context, key string) (*Entry, error) {
	stored, ok := s.entries.Peek(key)
	if !ok {
		return nil, ErrOrderingNotFound
	}
	if stored.Data.IsExpired(s.now()) {
		return nil, ErrOrderingExpired
	}
	return stored.Data, nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// DeletePrefix removes all entries whose key starts with prefix.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	return s.entries.DeletePrefix(prefix), nil
}

// DeleteExpired removes expired entries according to the store's clock.
func (s *MemoryStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return s.entries.Cleanup(), nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

// Close discards all entries.
func (s *MemoryStore) Close() error {
	s.entries.Clear()
	return nil
}
