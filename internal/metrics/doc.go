// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are registered on the default registry through promauto and exposed at
/metrics in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Feed Metrics:
  - feed_rank_duration_seconds: Ranking pass latency (histogram)
    Labels: phase ("initial", "widening")
  - feed_rank_candidates: Candidates per ranking pass (histogram)
  - feed_widening_batches_total: Widening batches (counter)
    Labels: outcome ("merged", "stale", "error")
  - feed_orderings_replaced_total: Orderings replaced by widening (counter)
  - feed_pages_served_total: Pages delivered (counter)
    Labels: sort, source ("ordering", "repository")
  - feed_load_errors_total: Failed page loads (counter)
  - feed_sessions_active: Live sessions (gauge)
  - session_cache_lookups_total: Ordering cache lookups (counter)
    Labels: result ("hit", "miss", "expired", "reused")

Infrastructure Metrics:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - websocket_connections, websocket_messages_sent_total
  - events_published_total, events_consumed_total
  - circuit_breaker_state, circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	ranked := sampler.Sample(scorer.ScoreAll(items, watched))
	metrics.RecordRankPass("initial", len(items), time.Since(start))
*/
package metrics
