// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// orderingKeyPrefix namespaces ordering entries in BadgerDB.
const orderingKeyPrefix = "ordering:"

// BadgerStore implements Store using BadgerDB for durable storage.
// Entries are written with a Badger TTL matching their lifetime, so Badger
// garbage-collects them even if DeleteExpired never runs.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadgerStore opens a BadgerDB at path. An empty path opens an in-memory DB.
// now is the clock Load checks expiry against; nil means time.Now.
func OpenBadgerStore(path string, now func() time.Time) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create session store directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for orderings: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &BadgerStore{db: db, now: now}, nil
}

// Save stores the entry.
func (s *BadgerStore) Save(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ordering: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(orderingKeyPrefix+entry.Key), data)
		if ttl := entry.ExpiresAt.Sub(entry.StoredAt); ttl > 0 {
			e = e.WithTTL(ttl)
		}
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set ordering: %w", err)
		}
		return nil
	})
}

// Load retrieves an entry by key. Entries past ExpiresAt that Badger has not
// yet collected are reported as ErrOrderingExpired.
func (s *BadgerStore) Load(ctx context.Context, key string) (*Entry, error) {
	var entry Entry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(orderingKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrOrderingNotFound
		}
		if err != nil {
			return fmt.Errorf("get ordering: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	if entry.IsExpired(s.now()) {
		return nil, ErrOrderingExpired
	}

	return &entry, nil
}

// Delete removes an entry by key.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(orderingKeyPrefix + key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete ordering: %w", err)
		}
		return nil
	})
}

// DeletePrefix removes all entries whose key starts with prefix.
func (s *BadgerStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.scan(prefix, func(*Entry) bool { return true })
	if err != nil {
		return 0, err
	}
	return s.deleteKeys(keys)
}

// DeleteExpired removes all entries expired at now.
func (s *BadgerStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	keys, err := s.scan("", func(e *Entry) bool { return e.IsExpired(now) })
	if err != nil {
		return 0, err
	}
	return s.deleteKeys(keys)
}

// scan returns raw keys under prefix whose entries satisfy match.
func (s *BadgerStore) scan(prefix string, match func(*Entry) bool) ([][]byte, error) {
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(orderingKeyPrefix + prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()

			var entry Entry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				continue
			}
			if match(&entry) {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan orderings: %w", err)
	}
	return keys, nil
}

func (s *BadgerStore) deleteKeys(keys [][]byte) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete ordering: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Count returns the number of stored entries.
func (s *BadgerStore) Count() (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(orderingKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// Close closes the underlying BadgerDB.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
