// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/naatfeed/internal/controller"
	"github.com/tomtom215/naatfeed/internal/logging"
	"github.com/tomtom215/naatfeed/internal/models"
	ws "github.com/tomtom215/naatfeed/internal/websocket"
)

// sessionIDParam is the chi URL parameter holding the feed session ID.
const sessionIDParam = "id"

// sessionContext adds the session ID from the URL to the logging context.
func sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chi.URLParam(r, sessionIDParam); id != "" {
			r = r.WithContext(logging.ContextWithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// respondState writes a session snapshot. A snapshot carrying a fetch error
// is sent with status 502 and the items loaded so far.
func respondState(w http.ResponseWriter, sessionID string, st controller.State, status int, start time.Time) {
	page := st.Page(sessionID)
	if page.Error != nil {
		respondJSON(w, http.StatusBadGateway, &models.APIResponse{
			Status: "error",
			Data:   page,
			Metadata: models.Metadata{
				Timestamp:   time.Now().UTC(),
				QueryTimeMS: time.Since(start).Milliseconds(),
			},
			Error: page.Error,
		})
		return
	}
	respondSuccess(w, status, page, start)
}

// lookupSession resolves the {id} URL parameter, writing a 404 when the
// session does not exist.
func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (string, *controller.Controller, bool) {
	id := chi.URLParam(r, sessionIDParam)
	ctrl, err := h.sessions.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return "", nil, false
	}
	return id, ctrl, true
}

// CreateSession starts a feed session and loads its first page.
//
// Method: POST
// Path: /api/v1/feed/sessions
// Body: {"channel_id": "...", "sort_mode": "for_you|recent|popular"} (optional)
//
// Response:
//   - 201: session created, data is the first page
//   - 400: invalid filter
//   - 502: the repository failed; no session is created
//   - 503: the server is shutting down
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req FeedFilterRequest
	if err := decodeJSONBody(w, r, &req, true); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	filter := req.Filter()
	id, ctrl, err := h.sessions.Create(r.Context(), filter)
	if err != nil {
		if errors.Is(err, controller.ErrControllerClosed) {
			respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "server is shutting down", nil)
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Str("filter", filter.Key()).Msg("feed session creation failed")
		respondError(w, http.StatusBadGateway, ErrCodeFetch, err.Error(), nil)
		return
	}

	logging.Ctx(r.Context()).Info().Str("session_id", id).Str("filter", filter.Key()).Msg("feed session created")
	respondState(w, id, ctrl.State(), http.StatusCreated, start)
}

// GetSession returns the current state of a session.
//
// Method: GET
// Path: /api/v1/feed/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ctrl, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	respondState(w, id, ctrl.State(), http.StatusOK, start)
}

// LoadMore loads the next page of the current filter. A request that
// arrives while a load is in flight returns the current state unchanged.
//
// Method: POST
// Path: /api/v1/feed/sessions/{id}/more
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	h.runSessionOp(w, r, func(ctx context.Context, ctrl *controller.Controller) error {
		_, err := ctrl.LoadMore(ctx)
		return err
	})
}

// Refresh drops the cached pages and ordering of the current filter and
// reloads its first page.
//
// Method: POST
// Path: /api/v1/feed/sessions/{id}/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.runSessionOp(w, r, func(ctx context.Context, ctrl *controller.Controller) error {
		_, err := ctrl.Refresh(ctx)
		return err
	})
}

// SetFilter switches the session to another channel or sort mode.
//
// Method: PUT
// Path: /api/v1/feed/sessions/{id}/filter
// Body: {"channel_id": "...", "sort_mode": "..."}
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FeedFilterRequest
	if err := decodeJSONBody(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	filter := req.Filter()
	h.runSessionOp(w, r, func(ctx context.Context, ctrl *controller.Controller) error {
		_, err := ctrl.SetFilter(ctx, filter)
		return err
	})
}

// runSessionOp resolves the session, runs op and writes the resulting
// state. Fetch failures are part of the state; only a closed session is
// reported as an error of its own.
func (h *Handler) runSessionOp(w http.ResponseWriter, r *http.Request, op func(context.Context, *controller.Controller) error) {
	start := time.Now()
	id, ctrl, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	if err := op(r.Context(), ctrl); errors.Is(err, controller.ErrControllerClosed) {
		respondDomainError(w, err)
		return
	}
	respondState(w, id, ctrl.State(), http.StatusOK, start)
}

// DeleteSession disposes a session and stops its background widening.
//
// Method: DELETE
// Path: /api/v1/feed/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, sessionIDParam)
	if err := h.sessions.Remove(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("feed session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// SessionWebSocket upgrades to a websocket that streams the session's
// state. The current snapshot is sent immediately after the upgrade.
//
// Method: GET
// Path: /api/v1/feed/sessions/{id}/ws
func (h *Handler) SessionWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}
	id, ctrl, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, id)
	client.Send(ws.Message{
		Type:      ws.MessageTypeFeedState,
		SessionID: id,
		Data:      ctrl.State().Page(id),
	})
	h.wsHub.Register <- client
	client.Start()
}
