// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		table      string
		err        error
		wantErrInc float64
	}{
		{"successful select", "SELECT", "content_items", nil, 0},
		{"failed insert", "INSERT", "watch_history", errors.New("constraint violation"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			if after-before != tt.wantErrInc {
				t.Errorf("error counter delta = %v, want %v", after-before, tt.wantErrInc)
			}
		})
	}
}

// TestRecordAPIRequest tests API request recording
func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("POST", "/api/v1/feed/sessions", "201")
	before := testutil.ToFloat64(c)
	RecordAPIRequest("POST", "/api/v1/feed/sessions", "201", 12*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordWideningBatch(t *testing.T) {
	tests := []struct {
		outcome      string
		wantReplaced float64
	}{
		{"merged", 1},
		{"stale", 0},
		{"error", 0},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			batches := FeedWideningBatches.WithLabelValues(tt.outcome)
			beforeBatches := testutil.ToFloat64(batches)
			beforeReplaced := testutil.ToFloat64(FeedOrderingsReplaced)

			RecordWideningBatch(tt.outcome)

			if got := testutil.ToFloat64(batches) - beforeBatches; got != 1 {
				t.Errorf("batch counter delta = %v, want 1", got)
			}
			if got := testutil.ToFloat64(FeedOrderingsReplaced) - beforeReplaced; got != tt.wantReplaced {
				t.Errorf("replaced counter delta = %v, want %v", got, tt.wantReplaced)
			}
		})
	}
}

func TestRecordSessionCacheLookup(t *testing.T) {
	for _, result := range []string{"hit", "miss", "expired", "reused"} {
		c := SessionCacheLookups.WithLabelValues(result)
		before := testutil.ToFloat64(c)
		RecordSessionCacheLookup(result)
		if got := testutil.ToFloat64(c) - before; got != 1 {
			t.Errorf("%s lookup delta = %v, want 1", result, got)
		}
	}
}

func TestRecordEventPublished(t *testing.T) {
	ok := EventsPublished.WithLabelValues("watch.recorded", "success")
	failed := EventsPublished.WithLabelValues("watch.recorded", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordEventPublished("watch.recorded", nil)
	RecordEventPublished("watch.recorded", errors.New("breaker open"))

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("test-breaker", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	RecordCircuitBreakerTransition("test-breaker", "open", "half-open", 1)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 1 {
		t.Errorf("breaker state = %v, want 1", got)
	}
}

func TestRecordRankPass(t *testing.T) {
	// Histograms only need to accept observations without panicking.
	RecordRankPass("initial", 40, time.Millisecond)
	RecordRankPass("widening", 540, 10*time.Millisecond)
	RecordPageServed("for_you", "ordering")
	RecordLoadError("recent")
	if got := testutil.CollectAndCount(FeedRankDuration); got < 2 {
		t.Errorf("rank duration series = %d, want >= 2", got)
	}
}
