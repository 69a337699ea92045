// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name      string
		storeType StoreType
		path      string
		wantErr   bool
	}{
		{"default memory", "", "", false},
		{"memory", StoreMemory, "", false},
		{"badger in memory", StoreBadger, "", false},
		{"badger on disk", StoreBadger, filepath.Join(t.TempDir(), "orderings"), false},
		{"unknown", StoreType("redis"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.storeType, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				if err := store.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	now := time.Now()

	store, err := OpenBadgerStore(dir, nil)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	entry := &Entry{
		Key:        "sess/all|for_you",
		Items:      testItems(4),
		Generation: 2,
		StoredAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	}
	if err := store.Save(ctx, entry); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadgerStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Items) != 4 || got.Generation != 2 {
		t.Errorf("Load() = %d items gen %d, want 4 items gen 2", len(got.Items), got.Generation)
	}
	if !got.ExpiresAt.Equal(entry.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, entry.ExpiresAt)
	}

	count, err := reopened.Count()
	if err != nil || count != 1 {
		t.Errorf("Count() = %d, %v; want 1, nil", count, err)
	}
}

func TestBadgerStoreLoadMissing(t *testing.T) {
	store, err := OpenBadgerStore("", nil)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer store.Close()

	if _, err := store.Load(context.Background(), "nope"); !errors.Is(err, ErrOrderingNotFound) {
		t.Errorf("Load() error = %v, want ErrOrderingNotFound", err)
	}
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	store := NewMemoryStore(nil)
	if _, err := store.Load(context.Background(), "nope"); !errors.Is(err, ErrOrderingNotFound) {
		t.Errorf("Load() error = %v, want ErrOrderingNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestEntryIsExpired(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Entry{StoredAt: base, ExpiresAt: base.Add(time.Hour)}

	tests := []struct {
		at   time.Time
		want bool
	}{
		{base, false},
		{base.Add(59 * time.Minute), false},
		{base.Add(time.Hour), true},
		{base.Add(61 * time.Minute), true},
	}
	for _, tt := range tests {
		if got := e.IsExpired(tt.at); got != tt.want {
			t.Errorf("IsExpired(%v) = %v, want %v", tt.at.Sub(base), got, tt.want)
		}
	}
}
