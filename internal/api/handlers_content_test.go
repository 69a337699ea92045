// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/naatfeed/internal/models"
)

func TestUpsertItems(t *testing.T) {
	e := newTestEnv(t, nil)
	uploaded := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	resp, env := e.do(t, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"items": []models.ContentItem{
			{ID: "naat-new", Title: "New", ChannelID: "ch-9", UploadedAt: uploaded, Views: 3},
			{ID: "naat-0000", Title: "Renamed", ChannelID: "ch-0", UploadedAt: uploaded, Views: 10},
			{ID: "naat-new", Title: "New again", ChannelID: "ch-9", UploadedAt: uploaded, Views: 4},
		},
	})
	expectStatus(t, resp, http.StatusOK)
	var out UpsertItemsResponse
	decodeData(t, env, &out)
	if out.Upserted != 2 {
		t.Errorf("upserted = %d, want 2", out.Upserted)
	}

	resp, env = e.do(t, http.MethodGet, "/api/v1/items/naat-0000", nil)
	expectStatus(t, resp, http.StatusOK)
	var item models.ContentItem
	decodeData(t, env, &item)
	if item.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", item.Title)
	}
}

func TestUpsertItems_Validation(t *testing.T) {
	e := newTestEnv(t, nil)
	tests := []struct {
		name string
		body interface{}
	}{
		{"no items", map[string]interface{}{"items": []models.ContentItem{}}},
		{"missing title", map[string]interface{}{"items": []models.ContentItem{
			{ID: "x", ChannelID: "ch-1", UploadedAt: time.Now()},
		}}},
		{"negative views", map[string]interface{}{"items": []models.ContentItem{
			{ID: "x", Title: "X", ChannelID: "ch-1", UploadedAt: time.Now(), Views: -1},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := e.do(t, http.MethodPost, "/api/v1/items", tt.body)
			expectStatus(t, resp, http.StatusBadRequest)
			expectErrorCode(t, env, "VALIDATION_ERROR")
		})
	}
}

func TestUpsertItems_DatabaseError(t *testing.T) {
	e := newTestEnv(t, nil)
	e.store.setDBErr(errRepositoryOffline)

	resp, env := e.do(t, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"items": []models.ContentItem{{ID: "x", Title: "X", ChannelID: "ch-1", UploadedAt: time.Now()}},
	})
	expectStatus(t, resp, http.StatusInternalServerError)
	expectErrorCode(t, env, ErrCodeDatabaseError)
}

func TestGetItem_NotFound(t *testing.T) {
	e := newTestEnv(t, nil)
	resp, env := e.do(t, http.MethodGet, "/api/v1/items/missing", nil)
	expectStatus(t, resp, http.StatusNotFound)
	expectErrorCode(t, env, ErrCodeNotFound)
}

func TestChannels(t *testing.T) {
	e := newTestEnv(t, nil)
	resp, env := e.do(t, http.MethodGet, "/api/v1/channels", nil)
	expectStatus(t, resp, http.StatusOK)

	var channels []models.ChannelSummary
	decodeData(t, env, &channels)
	if len(channels) != 3 {
		t.Fatalf("channels = %d, want 3", len(channels))
	}
	if channels[0].ID != "ch-0" || channels[0].ItemCount != 15 {
		t.Errorf("channels[0] = %+v, want ch-0 with 15 items", channels[0])
	}
}
