// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/naatfeed/internal/config"
	"github.com/tomtom215/naatfeed/internal/middleware"
)

// Router wires the handlers into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil security config uses the middleware
// defaults.
func NewRouter(handler *Handler, sec *config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(sec)),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.handler.perfMon.Middleware)
	r.Use(RequestLogging())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/performance", router.handler.Performance)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Route("/feed/sessions", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimit()).Post("/", router.handler.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(sessionContext)
				r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).Get("/ws", router.handler.SessionWebSocket)

				r.Group(func(r chi.Router) {
					r.Use(router.chiMiddleware.RateLimit())
					r.Get("/", router.handler.GetSession)
					r.Delete("/", router.handler.DeleteSession)
					r.Post("/more", router.handler.LoadMore)
					r.Post("/refresh", router.handler.Refresh)
					r.Put("/filter", router.handler.SetFilter)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/items/{id}", router.handler.GetItem)
			r.Get("/channels", router.handler.Channels)
			r.Get("/history", router.handler.History)
			r.Post("/history", router.handler.RecordWatch)
			r.Delete("/history", router.handler.ClearHistory)
		})

		r.With(router.chiMiddleware.RateLimitCustom(RateLimitIngest)).Post("/items", router.handler.UpsertItems)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
