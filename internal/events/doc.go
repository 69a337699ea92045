// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

// Package events moves watch events from the HTTP layer to the watch-history
// store asynchronously over an in-process Watermill pub/sub.
//
// Flow:
//
//	API handler -> Publisher.PublishWatch -> gochannel bus -> Router -> WatchConsumer -> database.RecordWatch
//
// Publisher wraps the bus with a gobreaker circuit breaker so a stalled bus
// fails fast instead of blocking request handlers.
//
// WatchConsumer registers its handler on a watermill message.Router with the
// Recoverer and Retry middleware. A write that fails MaxAttempts times is
// dropped: it is logged, counted in metrics and, with WithPoisonQueue,
// forwarded to TopicWatchDropped.
//
// Novelty is read when a ranking pass starts, so a recorded watch affects
// the next ranking, not orderings already cached.
package events
