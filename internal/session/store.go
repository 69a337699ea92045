// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/naatfeed/internal/models"
)

// Sentinel errors for ordering storage.
var (
	// ErrOrderingNotFound is returned when no ordering is stored under a key.
	ErrOrderingNotFound = errors.New("ordering not found")

	// ErrOrderingExpired is returned when a stored ordering outlived its TTL.
	ErrOrderingExpired = errors.New("ordering expired")
)

// Entry is one cached ordering.
type Entry struct {
	Key        string               `json:"key"`
	Items      []models.ContentItem `json:"items"`
	Generation uint64               `json:"generation"`
	StoredAt   time.Time            `json:"stored_at"`
	ExpiresAt  time.Time            `json:"expires_at"`
}

// IsExpired reports whether the entry has expired at the given instant.
// An entry is expired from ExpiresAt onwards.
func (e *Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store persists ordering entries. Implementations must be safe for concurrent use.
type Store interface {
	// Save stores or replaces the entry under entry.Key.
	Save(ctx context.Context, entry *Entry) error

	// Load returns the entry for key. It returns ErrOrderingNotFound when
	// nothing is stored and ErrOrderingExpired when the entry outlived its
	// TTL but has not been removed yet.
	Load(ctx context.Context, key string) (*Entry, error)

	// Delete removes the entry for key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// DeleteExpired removes every entry expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// StoreType defines the type of ordering storage backend.
type StoreType string

const (
	// StoreMemory keeps orderings in process memory (default, not persistent).
	StoreMemory StoreType = "memory"

	// StoreBadger keeps orderings in BadgerDB so they survive restarts.
	StoreBadger StoreType = "badger"
)

// NewStore creates a Store for the given backend. path is only used by
// StoreBadger; an empty path opens an in-memory Badger instance.
func NewStore(storeType StoreType, path string) (Store, error) {
	switch storeType {
	case StoreMemory, "":
		return NewMemoryStore(nil), nil
	case StoreBadger:
		return OpenBadgerStore(path, nil)
	default:
		return nil, fmt.Errorf("unknown session store type %q", storeType)
	}
}
