// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	ActiveSessions    int     `json:"active_sessions"`
	WebSocketClients  int     `json:"websocket_clients"`
	Uptime            float64 `json:"uptime_seconds"`
}

// HealthLive handles liveness probe requests. It returns 200 while the
// process is alive, regardless of dependencies.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests. It returns 503 while the
// database does not answer.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "ready",
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.sessions != nil {
		health.ActiveSessions = h.sessions.Len()
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}

	status := http.StatusOK
	if !dbConnected {
		health.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, health, start)
}

// Performance returns latency percentiles of recent requests per route.
//
// Method: GET
// Path: /api/v1/health/performance
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.perfMon.GetStats(), time.Now())
}
