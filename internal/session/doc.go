// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package session caches realized feed orderings per viewing session.

A Cache stores an ordering under a key (session ID plus filter key) together
with the instant it was stored. Entries live for a fixed TTL, one hour by
default, measured from store time. Reading an entry at or after its expiry
evicts it and reports it absent.

Two backends implement Store:
  - MemoryStore: in-process, built on cache.Cache (default)
  - BadgerStore: BadgerDB, so orderings survive a restart

Select a backend with NewStore:

	store, err := session.NewStore(session.StoreBadger, "/data/sessions")
	c := session.NewCache(store, time.Hour, logger)
*/
package session
