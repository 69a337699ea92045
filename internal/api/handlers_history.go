// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/naatfeed/internal/events"
	"github.com/tomtom215/naatfeed/internal/logging"
	"github.com/tomtom215/naatfeed/internal/models"
)

const defaultHistoryLimit = 50

// History lists watch history entries, most recent first.
//
// Method: GET
// Path: /api/v1/history?limit=50
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := HistoryRequest{Limit: getIntParam(r, "limit", defaultHistoryLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	entries, err := h.store.History(r.Context(), req.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "failed to read watch history", err)
		return
	}
	if entries == nil {
		entries = []models.WatchHistoryEntry{}
	}
	respondSuccess(w, http.StatusOK, entries, start)
}

// RecordWatch records that an item was watched. The write is asynchronous:
// the event is published to the bus and persisted by the watch consumer.
//
// Method: POST
// Path: /api/v1/history
// Body: {"item_id": "...", "session_id": "...", "watched_at": "RFC3339"}
//
// Response:
//   - 202: event accepted
//   - 400: invalid body
//   - 404: unknown item
//   - 503: the event bus is unavailable (circuit open)
func (h *Handler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecordWatchRequest
	if err := decodeJSONBody(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.store.GetItem(r.Context(), req.ItemID); err != nil {
		respondDomainError(w, err)
		return
	}

	watchedAt := time.Now().UTC()
	if req.WatchedAt != nil {
		watchedAt = req.WatchedAt.UTC()
	}
	event := events.NewWatchEvent(req.ItemID, req.SessionID, watchedAt)

	if err := h.publisher.PublishWatch(r.Context(), event); err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, events.ErrPublisherClosed) {
			respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "watch events are temporarily unavailable", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to record watch", err)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("item_id", req.ItemID).Str("event_id", event.EventID).Msg("watch event published")
	respondSuccess(w, http.StatusAccepted, RecordWatchResponse{
		EventID:   event.EventID,
		ItemID:    event.ItemID,
		WatchedAt: event.WatchedAt,
	}, start)
}

// ClearHistory deletes every watch history entry.
//
// Method: DELETE
// Path: /api/v1/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearHistory(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "failed to clear watch history", err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("watch history cleared")
	w.WriteHeader(http.StatusNoContent)
}
