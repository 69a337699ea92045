// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRecordWatch_WatchedIDs(t *testing.T) {
	db := setupTestDB(t, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := db.RecordWatch(ctx, fmt.Sprintf("item-%d", i), testEpoch.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordWatch() error = %v", err)
		}
	}

	ids, err := db.WatchedIDs(ctx)
	if err != nil {
		t.Fatalf("WatchedIDs() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len = %d, want 3", len(ids))
	}
	for i := 0; i < 3; i++ {
		if _, ok := ids[fmt.Sprintf("item-%d", i)]; !ok {
			t.Errorf("item-%d missing from watched ids", i)
		}
	}
}

func TestRecordWatch_CapKeepsMostRecent(t *testing.T) {
	db := setupTestDB(t, 5)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if err := db.RecordWatch(ctx, fmt.Sprintf("item-%d", i), testEpoch.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordWatch() error = %v", err)
		}
	}

	entries, err := db.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("len = %d, want 5", len(entries))
	}
	for i, e := range entries {
		want := fmt.Sprintf("item-%d", 7-i)
		if e.ItemID != want {
			t.Errorf("entries[%d] = %s, want %s", i, e.ItemID, want)
		}
	}
}

func TestRecordWatch_RewatchMovesToFront(t *testing.T) {
	db := setupTestDB(t, 3)
	ctx := context.Background()

	must := func(id string, at time.Time) {
		t.Helper()
		if err := db.RecordWatch(ctx, id, at); err != nil {
			t.Fatalf("RecordWatch(%s) error = %v", id, err)
		}
	}
	must("a", testEpoch)
	must("b", testEpoch.Add(time.Minute))
	must("c", testEpoch.Add(2*time.Minute))
	must("a", testEpoch.Add(3*time.Minute))
	must("d", testEpoch.Add(4*time.Minute))

	ids, err := db.WatchedIDs(ctx)
	if err != nil {
		t.Fatalf("WatchedIDs() error = %v", err)
	}
	for _, want := range []string{"a", "c", "d"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("%s missing from %v", want, ids)
		}
	}
	if _, ok := ids["b"]; ok {
		t.Error("b should have been trimmed as the oldest entry")
	}

	entries, err := db.History(ctx, 1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ItemID != "d" {
		t.Errorf("History(1) = %+v, want [d]", entries)
	}
	if !entries[0].WatchedAt.Equal(testEpoch.Add(4 * time.Minute)) {
		t.Errorf("WatchedAt = %v", entries[0].WatchedAt)
	}
}

func TestRecordWatch_EmptyID(t *testing.T) {
	db := setupTestDB(t, 5)
	if err := db.RecordWatch(context.Background(), "", testEpoch); err == nil {
		t.Error("expected error for empty item id")
	}
}

func TestRecordWatch_Concurrent(t *testing.T) {
	db := setupTestDB(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- db.RecordWatch(ctx, fmt.Sprintf("item-%d", i%10), testEpoch.Add(time.Duration(i)*time.Second))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordWatch() error = %v", err)
		}
	}

	ids, err := db.WatchedIDs(ctx)
	if err != nil {
		t.Fatalf("WatchedIDs() error = %v", err)
	}
	if len(ids) != 10 {
		t.Errorf("len = %d, want 10 distinct items", len(ids))
	}
}

func countHistoryRows(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	if err := db.conn.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM watch_history`).Scan(&n); err != nil {
		t.Fatalf("count watch_history: %v", err)
	}
	return n
}

func TestRecordWatch_TableNeverExceedsCap(t *testing.T) {
	db := setupTestDB(t, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	overCap := make(chan int, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			var n int
			if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM watch_history`).Scan(&n); err == nil && n > 5 {
				select {
				case overCap <- n:
				default:
				}
			}
		}
	}()

	for i := 0; i < 40; i++ {
		if err := db.RecordWatch(ctx, fmt.Sprintf("item-%d", i), testEpoch.Add(time.Duration(i)*time.Second)); err != nil {
			close(stop)
			wg.Wait()
			t.Fatalf("RecordWatch(%d) error = %v", i, err)
		}
	}
	close(stop)
	wg.Wait()

	select {
	case n := <-overCap:
		t.Errorf("reader saw %d rows, want at most 5", n)
	default:
	}
	if n := countHistoryRows(t, db); n != 5 {
		t.Errorf("rows = %d, want 5", n)
	}

	ids, err := db.WatchedIDs(ctx)
	if err != nil {
		t.Fatalf("WatchedIDs() error = %v", err)
	}
	for i := 35; i < 40; i++ {
		if _, ok := ids[fmt.Sprintf("item-%d", i)]; !ok {
			t.Errorf("item-%d missing from retained history", i)
		}
	}
}

func TestClearHistory(t *testing.T) {
	db := setupTestDB(t, 5)
	ctx := context.Background()

	if err := db.RecordWatch(ctx, "a", testEpoch); err != nil {
		t.Fatalf("RecordWatch() error = %v", err)
	}
	if err := db.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}
	ids, err := db.WatchedIDs(ctx)
	if err != nil {
		t.Fatalf("WatchedIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("len = %d after clear, want 0", len(ids))
	}
}
