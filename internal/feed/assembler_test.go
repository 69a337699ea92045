// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/naatfeed/internal/models"
)

// fakeSource implements ContentSource over an in-memory slice.
type fakeSource struct {
	mu       sync.Mutex
	items    []models.ContentItem
	requests []PageRequest
	errAt    map[int]error
	gate     chan struct{} // when set, fetches at offset > 0 block until it is closed
}

func (f *fakeSource) FetchPage(ctx context.Context, req PageRequest) ([]models.ContentItem, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	err := f.errAt[req.Offset]
	gate := f.gate
	f.mu.Unlock()

	if gate != nil && req.Offset > 0 {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	var filtered []models.ContentItem
	for _, it := range f.items {
		if req.ChannelID == "" || it.ChannelID == req.ChannelID {
			filtered = append(filtered, it)
		}
	}
	if req.Offset >= len(filtered) {
		return []models.ContentItem{}, nil
	}
	end := req.Offset + req.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	out := make([]models.ContentItem, end-req.Offset)
	copy(out, filtered[req.Offset:end])
	return out, nil
}

func (f *fakeSource) Requests() []PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PageRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// fakeHistory implements HistorySource.
type fakeHistory struct {
	ids   map[string]struct{}
	err   error
	calls int32
}

func (h *fakeHistory) WatchedIDs(ctx context.Context) (map[string]struct{}, error) {
	atomic.AddInt32(&h.calls, 1)
	if h.err != nil {
		return nil, h.err
	}
	return h.ids, nil
}

func makeItems(n, channels int) []models.ContentItem {
	items := make([]models.ContentItem, n)
	for i := range items {
		items[i] = models.ContentItem{
			ID:         fmt.Sprintf("item-%04d", i),
			Title:      fmt.Sprintf("Clip %d", i),
			ChannelID:  fmt.Sprintf("ch-%d", i%channels),
			UploadedAt: testNow.Add(-time.Duration(i) * time.Hour),
			Views:      int64((i * 37) % 1000),
		}
	}
	return items
}

func testFeedConfig() *Config {
	cfg := DefaultConfig()
	cfg.WideningRate = 0
	cfg.Seed = 42
	return cfg
}

func newTestAssembler(t *testing.T, src ContentSource, hist HistorySource, channel string) *Assembler {
	t.Helper()
	a, err := NewAssembler(testFeedConfig(), src, hist, channel, zerolog.Nop(),
		WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func assertUnique(t *testing.T, items []models.ContentItem) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate item %s in ordering", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestNewAssemblerValidation(t *testing.T) {
	if _, err := NewAssembler(testFeedConfig(), nil, nil, "", zerolog.Nop()); err == nil {
		t.Error("expected error for nil source")
	}

	cfg := testFeedConfig()
	cfg.Weights.Random = 0
	if _, err := NewAssembler(cfg, &fakeSource{}, nil, "", zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config")
	}
}

// TestAssemblerInitialBatchThenWidening ranks 40 items for first paint and
// then widens from offset 40 in batches of 500.
func TestAssemblerInitialBatchThenWidening(t *testing.T) {
	src := &fakeSource{items: makeItems(1000, 7)}
	a := newTestAssembler(t, src, &fakeHistory{}, "")

	var replaced int32
	a.OnReplace(func(Ordering) { atomic.AddInt32(&replaced, 1) })

	ord, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(ord.Items) != 40 {
		t.Fatalf("initial ordering has %d items, want 40", len(ord.Items))
	}
	assertUnique(t, ord.Items)

	a.Wait()

	reqs := src.Requests()
	want := []PageRequest{
		{Limit: 40, Offset: 0, Sort: models.SortRecent},
		{Limit: 500, Offset: 40, Sort: models.SortRecent},
		{Limit: 500, Offset: 540, Sort: models.SortRecent},
	}
	if len(reqs) != len(want) {
		t.Fatalf("got %d requests, want %d: %+v", len(reqs), len(want), reqs)
	}
	for i := range want {
		if reqs[i] != want[i] {
			t.Errorf("request[%d] = %+v, want %+v", i, reqs[i], want[i])
		}
	}

	final := a.Ordering()
	if len(final.Items) != 1000 {
		t.Errorf("final ordering has %d items, want 1000", len(final.Items))
	}
	assertUnique(t, final.Items)
	if final.Batches != 3 {
		t.Errorf("Batches = %d, want 3", final.Batches)
	}
	if got := a.State(); got != StateComplete {
		t.Errorf("State() = %v, want complete", got)
	}
	if got := atomic.LoadInt32(&replaced); got != 2 {
		t.Errorf("OnReplace called %d times, want 2", got)
	}
}

func TestAssemblerShortInitialBatchCompletes(t *testing.T) {
	src := &fakeSource{items: makeItems(15, 3)}
	a := newTestAssembler(t, src, nil, "")

	ord, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	a.Wait()

	if len(ord.Items) != 15 {
		t.Errorf("ordering has %d items, want 15", len(ord.Items))
	}
	if got := a.State(); got != StateComplete {
		t.Errorf("State() = %v, want complete", got)
	}
	if n := len(src.Requests()); n != 1 {
		t.Errorf("got %d requests, want 1", n)
	}
}

func TestAssemblerStartIsIdempotent(t *testing.T) {
	src := &fakeSource{items: makeItems(20, 2)}
	a := newTestAssembler(t, src, nil, "")

	first, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	second, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if fmt.Sprint(first.IDs()) != fmt.Sprint(second.IDs()) {
		t.Error("second Start returned a different ordering")
	}
	if n := len(src.Requests()); n != 1 {
		t.Errorf("got %d requests, want 1", n)
	}
}

func TestAssemblerResetDiscardsStaleWidening(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{items: makeItems(600, 4), gate: gate}
	a := newTestAssembler(t, src, nil, "")

	var replaced int32
	a.OnReplace(func(Ordering) { atomic.AddInt32(&replaced, 1) })

	if _, err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, func() bool { return len(src.Requests()) == 2 })

	a.Reset()
	close(gate)
	a.Wait()

	if got := atomic.LoadInt32(&replaced); got != 0 {
		t.Errorf("OnReplace called %d times after Reset, want 0", got)
	}
	if got := a.State(); got != StateCold {
		t.Errorf("State() = %v, want cold", got)
	}
	ord := a.Ordering()
	if len(ord.Items) != 0 {
		t.Errorf("ordering has %d items after Reset, want 0", len(ord.Items))
	}
	if ord.Generation != 1 || a.Generation() != 1 {
		t.Errorf("generation = %d/%d, want 1", ord.Generation, a.Generation())
	}

	// A fresh run after Reset starts from offset 0 again.
	src.mu.Lock()
	src.gate = nil
	src.mu.Unlock()
	ord, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() after Reset error = %v", err)
	}
	if ord.Generation != 1 {
		t.Errorf("new ordering generation = %d, want 1", ord.Generation)
	}
	a.Wait()
	if got := len(a.Ordering().Items); got != 600 {
		t.Errorf("ordering after rerun has %d items, want 600", got)
	}
}

func TestAssemblerWideningErrorKeepsOrdering(t *testing.T) {
	src := &fakeSource{
		items: makeItems(300, 3),
		errAt: map[int]error{40: errors.New("connection reset")},
	}
	a := newTestAssembler(t, src, nil, "")

	ord, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	a.Wait()

	if got := a.State(); got != StateComplete {
		t.Errorf("State() = %v, want complete", got)
	}
	if fmt.Sprint(a.Ordering().IDs()) != fmt.Sprint(ord.IDs()) {
		t.Error("ordering changed after widening error")
	}
}

func TestAssemblerInitialFetchError(t *testing.T) {
	boom := errors.New("repository unavailable")
	src := &fakeSource{items: makeItems(10, 1), errAt: map[int]error{0: boom}}
	a := newTestAssembler(t, src, nil, "")

	_, err := a.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want wrapped %v", err, boom)
	}
	if got := a.State(); got != StateCold {
		t.Errorf("State() = %v, want cold", got)
	}
}

func TestAssemblerStartAfterClose(t *testing.T) {
	a := newTestAssembler(t, &fakeSource{items: makeItems(5, 1)}, nil, "")
	a.Close()
	if _, err := a.Start(context.Background()); !errors.Is(err, ErrAssemblerClosed) {
		t.Errorf("Start() after Close error = %v, want ErrAssemblerClosed", err)
	}
}

func TestAssemblerChannelFilter(t *testing.T) {
	src := &fakeSource{items: makeItems(90, 3)}
	a := newTestAssembler(t, src, nil, "ch-1")

	ord, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	a.Wait()

	for _, req := range src.Requests() {
		if req.ChannelID != "ch-1" {
			t.Errorf("request channel = %q, want ch-1", req.ChannelID)
		}
	}
	for _, it := range a.Ordering().Items {
		if it.ChannelID != "ch-1" {
			t.Errorf("item %s from channel %s leaked into ch-1 feed", it.ID, it.ChannelID)
		}
	}
	if len(ord.Items) != 30 {
		t.Errorf("ordering has %d items, want 30", len(ord.Items))
	}
}

func TestAssemblerAllChannelsSentinel(t *testing.T) {
	src := &fakeSource{items: makeItems(10, 2)}
	a := newTestAssembler(t, src, nil, models.AllChannels)
	if _, err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := src.Requests()[0].ChannelID; got != "" {
		t.Errorf("request channel = %q, want empty", got)
	}
}

func TestAssemblerHistoryErrorDegrades(t *testing.T) {
	hist := &fakeHistory{err: errors.New("history table locked")}
	a := newTestAssembler(t, &fakeSource{items: makeItems(12, 2)}, hist, "")

	ord, err := a.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v, want history failure to be tolerated", err)
	}
	if len(ord.Items) != 12 {
		t.Errorf("ordering has %d items, want 12", len(ord.Items))
	}
	if atomic.LoadInt32(&hist.calls) == 0 {
		t.Error("history was never consulted")
	}
}

func TestAssemblerDeduplicatesAcrossBatches(t *testing.T) {
	items := makeItems(60, 3)
	// Rows shift between fetches so the second batch repeats an earlier item.
	items[45] = items[3]
	src := &fakeSource{items: items}
	a := newTestAssembler(t, src, nil, "")

	if _, err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	a.Wait()

	ord := a.Ordering()
	assertUnique(t, ord.Items)
	if len(ord.Items) != 59 {
		t.Errorf("ordering has %d items, want 59", len(ord.Items))
	}
}

func TestAssemblerCandidateCap(t *testing.T) {
	cfg := testFeedConfig()
	cfg.MaxCandidates = 100
	src := &fakeSource{items: makeItems(2000, 5)}
	a, err := NewAssembler(cfg, src, nil, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	a.Wait()

	if got := a.CandidateCount(); got != 100 {
		t.Errorf("CandidateCount() = %d, want 100", got)
	}
	if got := a.State(); got != StateComplete {
		t.Errorf("State() = %v, want complete", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateCold, "cold"},
		{StateInitialRanked, "initial_ranked"},
		{StateWidening, "widening"},
		{StateComplete, "complete"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
