// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Feed Ranking Metrics
	FeedRankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_rank_duration_seconds",
			Help:    "Duration of a score-and-sample ranking pass",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"phase"}, // "initial", "widening"
	)

	FeedRankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_rank_candidates",
			Help:    "Number of candidates in a ranking pass",
			Buckets: []float64{10, 40, 100, 500, 1000, 2500, 5000, 10000},
		},
	)

	FeedWideningBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_widening_batches_total",
			Help: "Total number of background widening batches by outcome",
		},
		[]string{"outcome"}, // "merged", "stale", "error"
	)

	FeedOrderingsReplaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_orderings_replaced_total",
			Help: "Total number of orderings replaced by widening",
		},
	)

	FeedPagesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_pages_served_total",
			Help: "Total number of feed pages served",
		},
		[]string{"sort", "source"}, // source: "ordering", "repository"
	)

	FeedLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_load_errors_total",
			Help: "Total number of failed page loads",
		},
		[]string{"sort"},
	)

	FeedSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_sessions_active",
			Help: "Current number of live feed sessions",
		},
	)

	// Session Cache Metrics
	SessionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_cache_lookups_total",
			Help: "Total number of ordering cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "expired", "reused"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published by result",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed by result",
		},
		[]string{"topic", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRankPass records one ranking pass.
func RecordRankPass(phase string, candidates int, duration time.Duration) {
	FeedRankDuration.WithLabelValues(phase).Observe(duration.Seconds())
	FeedRankCandidates.Observe(float64(candidates))
}

// RecordWideningBatch records the outcome of one widening batch.
func RecordWideningBatch(outcome string) {
	FeedWideningBatches.WithLabelValues(outcome).Inc()
	if outcome == "merged" {
		FeedOrderingsReplaced.Inc()
	}
}

// RecordPageServed records a page delivered to a viewer.
func RecordPageServed(sort, source string) {
	FeedPagesServed.WithLabelValues(sort, source).Inc()
}

// RecordLoadError records a failed page load.
func RecordLoadError(sort string) {
	FeedLoadErrors.WithLabelValues(sort).Inc()
}

// RecordSessionCacheLookup records an ordering cache lookup.
func RecordSessionCacheLookup(result string) {
	SessionCacheLookups.WithLabelValues(result).Inc()
}

// RecordEventPublished records an event publish attempt.
func RecordEventPublished(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventConsumed records a consumed event.
func RecordEventConsumed(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsConsumed.WithLabelValues(topic, result).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change.
// States follow gobreaker: 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name string, from, to string, toState int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(toState))
}
