// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds DDL execution.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates all tables if they do not already exist.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table creation SQL statements.
//
// The tables carry no secondary indexes: DuckDB rejects ON CONFLICT DO UPDATE
// on rows whose indexed columns change, and both tables are upserted.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS content_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL,
			views BIGINT NOT NULL DEFAULT 0,
			channel_id TEXT NOT NULL,
			channel_name TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			media_url TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS watch_history (
			item_id TEXT PRIMARY KEY,
			watched_at TIMESTAMP NOT NULL
		)`,
	}
}
