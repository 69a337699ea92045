// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/naatfeed/internal/config"
	"github.com/tomtom215/naatfeed/internal/controller"
	"github.com/tomtom215/naatfeed/internal/events"
	"github.com/tomtom215/naatfeed/internal/logging"
	"github.com/tomtom215/naatfeed/internal/middleware"
	"github.com/tomtom215/naatfeed/internal/models"
	ws "github.com/tomtom215/naatfeed/internal/websocket"
)

// ContentStore is the repository surface used by the handlers.
// Satisfied by *database.DB.
type ContentStore interface {
	Ping(ctx context.Context) error
	GetItem(ctx context.Context, id string) (*models.ContentItem, error)
	UpsertItems(ctx context.Context, items []models.ContentItem) (int, error)
	ListChannels(ctx context.Context) ([]models.ChannelSummary, error)
	History(ctx context.Context, limit int) ([]models.WatchHistoryEntry, error)
	ClearHistory(ctx context.Context) error
}

// WatchPublisher publishes watch events. Satisfied by *events.Publisher.
type WatchPublisher interface {
	PublishWatch(ctx context.Context, event *events.WatchEvent) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_feed.go: feed session endpoints and the session websocket
//   - handlers_content.go: item ingestion and channel listing
//   - handlers_history.go: watch history
//   - handlers_health.go: health and performance endpoints
type Handler struct {
	config    *config.Config
	store     ContentStore
	sessions  *controller.Manager
	publisher WatchPublisher
	wsHub     *ws.Hub
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a new API handler. wsHub may be nil, in which case the
// websocket endpoint answers 503.
func NewHandler(cfg *config.Config, store ContentStore, sessions *controller.Manager, publisher WatchPublisher, wsHub *ws.Hub) *Handler {
	return &Handler{
		config:    cfg,
		store:     store,
		sessions:  sessions,
		publisher: publisher,
		wsHub:     wsHub,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the monitor fed by the router's middleware.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// configured CORS origins. Browsers always send Origin, so a missing header
// is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
