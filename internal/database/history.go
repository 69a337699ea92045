// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/naatfeed/internal/metrics"
	"github.com/tomtom215/naatfeed/internal/models"
)

// RecordWatch stores that an item was watched at the given time and trims
// the history to the most recent HistoryCap entries. Re-watching an item
// moves it to the front.
func (db *DB) RecordWatch(ctx context.Context, itemID string, watchedAt time.Time) error {
	if itemID == "" {
		return fmt.Errorf("item id is required")
	}
	if watchedAt.IsZero() {
		watchedAt = time.Now()
	}

	db.historyMu.Lock()
	defer db.historyMu.Unlock()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	// Retry logic for transaction conflicts
	const maxRetries = 3
	var lastErr error

	start := time.Now()
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.doRecordWatch(ctx, itemID, watchedAt.UTC())
		if err == nil {
			metrics.RecordDBQuery("record_watch", "watch_history", time.Since(start), nil)
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}
		if !isTransactionConflict(err) {
			break
		}

		backoff := time.Millisecond * time.Duration(1<<uint(attempt)) // 1ms, 2ms, 4ms
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	metrics.RecordDBQuery("record_watch", "watch_history", time.Since(start), lastErr)
	return lastErr
}

// doRecordWatch upserts the watch and trims the history in one transaction,
// so readers never see the table above its cap.
func (db *DB) doRecordWatch(ctx context.Context, itemID string, watchedAt time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO watch_history (item_id, watched_at) VALUES (?, ?)
		ON CONFLICT (item_id) DO UPDATE SET watched_at = EXCLUDED.watched_at`,
		itemID, watchedAt)
	if err != nil {
		return fmt.Errorf("failed to record watch: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM watch_history
		WHERE item_id NOT IN (
			SELECT item_id FROM watch_history
			ORDER BY watched_at DESC, item_id
			LIMIT ?
		)`, db.historyCap)
	if err != nil {
		return fmt.Errorf("failed to trim watch history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit watch: %w", err)
	}
	return nil
}

// WatchedIDs returns the IDs of the retained watch history. It satisfies the
// history source the feed assembler scores novelty against.
//
// watch_history is not keyed by viewer: the process serves a single viewer,
// and every feed session shares this one history and its cap.
func (db *DB) WatchedIDs(ctx context.Context) (map[string]struct{}, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id FROM watch_history
		ORDER BY watched_at DESC, item_id
		LIMIT ?`, db.historyCap)
	if err != nil {
		metrics.RecordDBQuery("watched_ids", "watch_history", time.Since(start), err)
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan watch history: %w", err)
		}
		ids[id] = struct{}{}
	}
	err = rows.Err()
	metrics.RecordDBQuery("watched_ids", "watch_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating watch history: %w", err)
	}
	return ids, nil
}

// History returns up to limit watch entries, most recent first. A
// non-positive limit returns the whole retained history.
func (db *DB) History(ctx context.Context, limit int) ([]models.WatchHistoryEntry, error) {
	if limit <= 0 || limit > db.historyCap {
		limit = db.historyCap
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id, watched_at FROM watch_history
		ORDER BY watched_at DESC, item_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.WatchHistoryEntry, 0, limit)
	for rows.Next() {
		var e models.WatchHistoryEntry
		if err := rows.Scan(&e.ItemID, &e.WatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch history: %w", err)
		}
		e.WatchedAt = e.WatchedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watch history: %w", err)
	}
	return entries, nil
}

// ClearHistory removes every watch entry.
func (db *DB) ClearHistory(ctx context.Context) error {
	db.historyMu.Lock()
	defer db.historyMu.Unlock()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "DELETE FROM watch_history"); err != nil {
		return fmt.Errorf("failed to clear watch history: %w", err)
	}
	return nil
}
