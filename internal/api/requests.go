// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"time"

	"github.com/tomtom215/naatfeed/internal/models"
)

// FeedFilterRequest is the body of session creation and filter changes.
// Both fields are optional: an empty channel means all channels and an
// empty sort mode means for_you.
type FeedFilterRequest struct {
	ChannelID string `json:"channel_id" validate:"omitempty,channelid"`
	SortMode  string `json:"sort_mode" validate:"omitempty,sortmode"`
}

// Filter converts the request to a normalized models.FeedFilter. Call only
// after validation.
func (r FeedFilterRequest) Filter() models.FeedFilter {
	sort, err := models.ParseSortMode(r.SortMode)
	if err != nil {
		sort = models.SortForYou
	}
	return models.FeedFilter{ChannelID: r.ChannelID, Sort: sort}.Normalized()
}

// RecordWatchRequest is the body of POST /api/v1/history.
type RecordWatchRequest struct {
	ItemID    string     `json:"item_id" validate:"required,max=64"`
	SessionID string     `json:"session_id,omitempty" validate:"omitempty,uuid"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}

// HistoryRequest holds the validated query parameters of GET /api/v1/history.
type HistoryRequest struct {
	Limit int `json:"limit" validate:"min=1,max=1000"`
}

// UpsertItemsRequest is the body of POST /api/v1/items.
type UpsertItemsRequest struct {
	Items []models.ContentItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

// RecordWatchResponse acknowledges an accepted watch event.
type RecordWatchResponse struct {
	EventID   string    `json:"event_id"`
	ItemID    string    `json:"item_id"`
	WatchedAt time.Time `json:"watched_at"`
}

// UpsertItemsResponse reports how many distinct items were written.
type UpsertItemsResponse struct {
	Upserted int `json:"upserted"`
}
