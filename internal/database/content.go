// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/naatfeed/internal/feed"
	"github.com/tomtom215/naatfeed/internal/metrics"
	"github.com/tomtom215/naatfeed/internal/models"
)

const contentColumns = `id, title, uploaded_at, views, channel_id, channel_name,
	thumbnail_url, media_url, duration_seconds`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContentItem(row rowScanner) (models.ContentItem, error) {
	var item models.ContentItem
	err := row.Scan(
		&item.ID, &item.Title, &item.UploadedAt, &item.Views, &item.ChannelID,
		&item.ChannelName, &item.ThumbnailURL, &item.MediaURL, &item.DurationSeconds,
	)
	if err != nil {
		return models.ContentItem{}, err
	}
	item.UploadedAt = item.UploadedAt.UTC()
	return item, nil
}

// orderClause returns the ORDER BY clause for a sort mode. The personalized
// mode reads candidates newest first; its final order comes from ranking.
// Ties always break on id so paging is deterministic.
func orderClause(sort models.SortMode) string {
	if sort == models.SortPopular {
		return "ORDER BY views DESC, uploaded_at DESC, id"
	}
	return "ORDER BY uploaded_at DESC, id"
}

// FetchPage returns one page of content items in the requested order.
// A short page means the repository is exhausted for the filter.
func (db *DB) FetchPage(ctx context.Context, req feed.PageRequest) ([]models.ContentItem, error) {
	if req.Limit <= 0 {
		return []models.ContentItem{}, nil
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var sb strings.Builder
	args := make([]interface{}, 0, 3)
	sb.WriteString("SELECT ")
	sb.WriteString(contentColumns)
	sb.WriteString(" FROM content_items")
	if channel := req.ChannelID; channel != "" && channel != models.AllChannels {
		sb.WriteString(" WHERE channel_id = ?")
		args = append(args, channel)
	}
	sb.WriteString(" ")
	sb.WriteString(orderClause(req.Sort))
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, req.Limit, offset)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		metrics.RecordDBQuery("fetch_page", "content_items", time.Since(start), err)
		return nil, fmt.Errorf("failed to query content page: %w", err)
	}
	defer rows.Close()

	items := make([]models.ContentItem, 0, req.Limit)
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			metrics.RecordDBQuery("fetch_page", "content_items", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}
	err = rows.Err()
	metrics.RecordDBQuery("fetch_page", "content_items", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}

	return items, nil
}

// GetItem returns a single content item by ID.
func (db *DB) GetItem(ctx context.Context, id string) (*models.ContentItem, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM content_items WHERE id = ?", id)
	item, err := scanContentItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get_item", "content_items", time.Since(start), nil)
		return nil, ErrItemNotFound
	}
	metrics.RecordDBQuery("get_item", "content_items", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get content item %s: %w", id, err)
	}
	return &item, nil
}

// CountItems returns the number of items, optionally restricted to a channel.
func (db *DB) CountItems(ctx context.Context, channelID string) (int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := "SELECT COUNT(*) FROM content_items"
	var args []interface{}
	if channelID != "" && channelID != models.AllChannels {
		query += " WHERE channel_id = ?"
		args = append(args, channelID)
	}

	var count int64
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count content items: %w", err)
	}
	return count, nil
}

// ListChannels returns every channel with its item count, largest first.
func (db *DB) ListChannels(ctx context.Context) ([]models.ChannelSummary, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT channel_id, MAX(channel_name), COUNT(*) AS item_count
		FROM content_items
		GROUP BY channel_id
		ORDER BY item_count DESC, channel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	channels := make([]models.ChannelSummary, 0)
	for rows.Next() {
		var ch models.ChannelSummary
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}
	return channels, nil
}

// UpsertItems inserts or updates content items in a single transaction and
// returns the number written. Duplicate IDs within the batch keep the last value.
func (db *DB) UpsertItems(ctx context.Context, items []models.ContentItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	// DuckDB cannot update the same row twice in one transaction.
	latest := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for i := range items {
		if _, seen := latest[items[i].ID]; !seen {
			order = append(order, items[i].ID)
		}
		latest[items[i].ID] = i
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO content_items (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			uploaded_at = EXCLUDED.uploaded_at,
			views = EXCLUDED.views,
			channel_id = EXCLUDED.channel_id,
			channel_name = EXCLUDED.channel_name,
			thumbnail_url = EXCLUDED.thumbnail_url,
			media_url = EXCLUDED.media_url,
			duration_seconds = EXCLUDED.duration_seconds`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, id := range order {
		item := &items[latest[id]]
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.Title, item.UploadedAt.UTC(), item.Views, item.ChannelID,
			item.ChannelName, item.ThumbnailURL, item.MediaURL, item.DurationSeconds,
		); err != nil {
			metrics.RecordDBQuery("upsert_items", "content_items", time.Since(start), err)
			return 0, fmt.Errorf("failed to upsert content item %s: %w", item.ID, err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("upsert_items", "content_items", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return len(order), nil
}
