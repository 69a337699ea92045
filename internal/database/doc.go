// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

// Package database provides the DuckDB-backed content repository and
// watch-history store.
//
// # Overview
//
// DB satisfies both feed.ContentSource (FetchPage) and feed.HistorySource
// (WatchedIDs), so one handle serves repository-sorted feeds, the assembler's
// candidate fetches, and novelty scoring.
//
// Files:
//   - database.go: connection lifecycle (open, checkpoint, close)
//   - schema.go: table creation
//   - content.go: content_items reads and upserts
//   - history.go: watch_history writes, trimming, and reads
//   - errors.go: sentinel errors and close helpers
//
// # Ordering
//
// Pages are ordered deterministically:
//   - recent (and the personalized candidate read): uploaded_at DESC, id
//   - popular: views DESC, uploaded_at DESC, id
//
// # Watch History
//
// A single viewer's history is kept, capped at the configured HistoryCap
// (default 200). Re-watching an item refreshes its timestamp.
//
// # Thread Safety
//
// DB is safe for concurrent use. History writes are serialized internally.
package database
