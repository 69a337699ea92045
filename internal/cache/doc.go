// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package cache provides the in-memory data structures behind the feed.

Cache is a generic, mutex-guarded key/value store with per-entry TTL and an
injectable clock. Entries carry their store time so callers can report how
old a cached value is. The in-memory ordering store in package session is
built on it:

	entries := cache.New[*Entry](time.Hour, cache.WithClock[*Entry](now))
	entries.SetAt(key, entry, entry.StoredAt, ttl)
	n := entries.DeletePrefix(sessionID + "/")

Expired entries are evicted lazily on Get or in bulk by Cleanup.

WeightTree is a Fenwick tree over non-negative weights supporting O(log n)
updates and prefix-sum search. The feed sampler uses it to draw items
without replacement in proportion to their scores.
*/
package cache
