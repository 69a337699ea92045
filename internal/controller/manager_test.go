// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/naatfeed/internal/feed"
	"github.com/tomtom215/naatfeed/internal/session"
)

func newTestManager(t *testing.T, src *mockSource, idle time.Duration) (*Manager, *session.Cache, *testClock) {
	t.Helper()
	clock := newTestClock()
	cache := session.NewCache(session.NewMemoryStore(clock.Now), time.Hour, zerolog.Nop(), session.WithClock(clock.Now))
	m, err := NewManager(testConfig(), src, nil, cache, idle, zerolog.Nop(),
		WithManagerClock(clock.Now),
		WithControllerOptions(WithAssemblerOptions(feed.WithRandom(feed.NewRandom(3)))))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(m.Close)
	return m, cache, clock
}

func TestManagerCreateLoadsFirstPage(t *testing.T) {
	m, cache, _ := newTestManager(t, &mockSource{items: makeItems(45, 3)}, time.Hour)
	ctx := context.Background()

	id, ctrl, err := m.Create(ctx, forYouAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" || ctrl == nil {
		t.Fatal("Create() returned empty session")
	}
	if st := ctrl.State(); len(st.Items) != 20 || !st.HasMore {
		t.Errorf("first page items=%d hasMore=%v, want 20/true", len(st.Items), st.HasMore)
	}
	if _, ok := cache.Retrieve(ctx, id+"/"+forYouAll.Key()); !ok {
		t.Error("ordering not cached under the session prefix")
	}

	got, err := m.Get(id)
	if err != nil || got != ctrl {
		t.Errorf("Get() = %v, %v; want created controller", got, err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestManagerCreateFailureDiscardsSession(t *testing.T) {
	src := &mockSource{items: makeItems(10, 1)}
	src.SetErr(0, errors.New("repository offline"))
	m, _, _ := newTestManager(t, src, time.Hour)

	if _, _, err := m.Create(context.Background(), recentAll); err == nil {
		t.Fatal("Create() error = nil, want failure")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after failed create, want 0", m.Len())
	}
}

func TestManagerRemove(t *testing.T) {
	m, cache, _ := newTestManager(t, &mockSource{items: makeItems(30, 3)}, time.Hour)
	ctx := context.Background()

	id, _, err := m.Create(ctx, forYouAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := m.Remove(ctx, id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := m.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrSessionNotFound", err)
	}
	if _, ok := cache.Retrieve(ctx, id+"/"+forYouAll.Key()); ok {
		t.Error("session ordering survived Remove")
	}
	if err := m.Remove(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Remove() error = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerSweepIdle(t *testing.T) {
	m, _, clock := newTestManager(t, &mockSource{items: makeItems(30, 3)}, 10*time.Minute)
	ctx := context.Background()

	stale, _, err := m.Create(ctx, recentAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	clock.Advance(8 * time.Minute)
	active, _, err := m.Create(ctx, recentAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	clock.Advance(5 * time.Minute)
	if _, err := m.Get(active); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if n := m.SweepIdle(ctx); n != 1 {
		t.Errorf("SweepIdle() = %d, want 1", n)
	}
	if _, err := m.Get(stale); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived sweep")
	}
	if _, err := m.Get(active); err != nil {
		t.Error("active session was swept")
	}
}

func TestManagerSweepDisabled(t *testing.T) {
	m, _, clock := newTestManager(t, &mockSource{items: makeItems(5, 1)}, 0)
	if _, _, err := m.Create(context.Background(), recentAll); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	clock.Advance(24 * time.Hour)
	if n := m.SweepIdle(context.Background()); n != 0 {
		t.Errorf("SweepIdle() = %d with sweeping disabled, want 0", n)
	}
}

func TestManagerOnChange(t *testing.T) {
	m, _, _ := newTestManager(t, &mockSource{items: makeItems(50, 2)}, time.Hour)
	ctx := context.Background()

	var mu sync.Mutex
	updates := map[string]int{}
	m.OnChange(func(id string, st State) {
		mu.Lock()
		updates[id]++
		mu.Unlock()
	})

	id, ctrl, err := m.Create(ctx, recentAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := ctrl.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if updates[id] == 0 {
		t.Error("no state updates delivered for session")
	}
}

func TestManagerClose(t *testing.T) {
	m, _, _ := newTestManager(t, &mockSource{items: makeItems(5, 1)}, time.Hour)
	id, ctrl, err := m.Create(context.Background(), recentAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	m.Close()

	if _, err := m.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Close error = %v", err)
	}
	if _, err := ctrl.LoadMore(context.Background()); !errors.Is(err, ErrControllerClosed) {
		t.Errorf("LoadMore() after Close error = %v, want ErrControllerClosed", err)
	}
	if _, _, err := m.Create(context.Background(), recentAll); !errors.Is(err, ErrControllerClosed) {
		t.Errorf("Create() after Close error = %v, want ErrControllerClosed", err)
	}
}

func TestManagerOnRemove(t *testing.T) {
	m, _, clock := newTestManager(t, &mockSource{items: makeItems(30, 3)}, time.Minute)
	ctx := context.Background()

	var removed []string
	m.OnRemove(func(id string) { removed = append(removed, id) })

	explicit, _, err := m.Create(ctx, recentAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	swept, _, err := m.Create(ctx, recentAll)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := m.Remove(ctx, explicit); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	clock.Advance(2 * time.Minute)
	m.SweepIdle(ctx)

	if len(removed) != 2 || removed[0] != explicit || removed[1] != swept {
		t.Errorf("removed = %v, want [%s %s]", removed, explicit, swept)
	}
}
