// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/naatfeed/internal/logging"
)

// UpsertItems ingests content items. Items already present are updated
// in place; a batch repeating an ID keeps its last occurrence.
//
// Method: POST
// Path: /api/v1/items
// Body: {"items": [ContentItem, ...]} (1 to 1000 items)
func (h *Handler) UpsertItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req UpsertItemsRequest
	if err := decodeJSONBody(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	n, err := h.store.UpsertItems(r.Context(), req.Items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "failed to store items", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("upserted", n).Msg("content items ingested")
	respondSuccess(w, http.StatusOK, UpsertItemsResponse{Upserted: n}, start)
}

// GetItem returns one content item.
//
// Method: GET
// Path: /api/v1/items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	item, err := h.store.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, item, start)
}

// Channels lists the channels present in the repository, for the channel
// filter bar.
//
// Method: GET
// Path: /api/v1/channels
func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	channels, err := h.store.ListChannels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "failed to list channels", err)
		return
	}
	respondSuccess(w, http.StatusOK, channels, start)
}
