// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package models defines the value types shared across naatfeed.

Key Components:

  - ContentItem: one ingested clip (id, title, upload time, views, channel)
  - WatchHistoryEntry: one consumption record used for the novelty signal
  - SortMode / FeedFilter: the (channel, sort) identity of a feed partition
  - APIResponse: standardized HTTP response envelope

The types carry json tags for the HTTP API and validate tags consumed by
internal/validation. They have no behavior beyond parsing and key derivation.
*/
package models
