// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, env := e.do(t, http.MethodGet, "/api/v1/health/live", nil)
	expectStatus(t, resp, http.StatusOK)
	if env.Status != "success" {
		t.Errorf("live status = %q, want success", env.Status)
	}

	e.createSession(t, nil)
	resp, env = e.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	expectStatus(t, resp, http.StatusOK)
	var health HealthStatus
	decodeData(t, env, &health)
	if health.Status != "ready" || !health.DatabaseConnected || health.ActiveSessions != 1 {
		t.Errorf("ready = %+v", health)
	}

	e.store.setPingErr(errors.New("database locked"))
	resp, env = e.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	expectStatus(t, resp, http.StatusServiceUnavailable)
	decodeData(t, env, &health)
	if health.Status != "not_ready" || health.DatabaseConnected {
		t.Errorf("not ready = %+v", health)
	}
}

func TestPerformanceEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	e.do(t, http.MethodGet, "/api/v1/channels", nil)
	e.do(t, http.MethodGet, "/api/v1/channels", nil)

	resp, env := e.do(t, http.MethodGet, "/api/v1/health/performance", nil)
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(string(env.Data), "GET /api/v1/channels") {
		t.Errorf("performance stats %s do not include the channels route", env.Data)
	}
}

func TestMetricsEndpoint_UsesRoutePatterns(t *testing.T) {
	e := newTestEnv(t, nil)
	page := e.createSession(t, map[string]string{"sort_mode": "recent"})
	e.do(t, http.MethodPost, sessionsPath+"/"+page.SessionID+"/more", nil)

	resp, err := e.server.Client().Get(e.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	text := string(body)
	if !strings.Contains(text, `endpoint="/api/v1/feed/sessions/{id}/more"`) {
		t.Error("metrics missing the route pattern label for load more")
	}
	if strings.Contains(text, page.SessionID) {
		t.Error("metrics labels contain a session id")
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, env := e.do(t, http.MethodGet, "/nope", nil)
	expectStatus(t, resp, http.StatusNotFound)
	expectErrorCode(t, env, ErrCodeNotFound)

	resp, env = e.do(t, http.MethodPatch, "/api/v1/channels", nil)
	expectStatus(t, resp, http.StatusMethodNotAllowed)
	expectErrorCode(t, env, ErrCodeMethodNotAllowed)
}

func TestRouter_Headers(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, _ := e.do(t, http.MethodGet, "/api/v1/channels", nil)
	expectStatus(t, resp, http.StatusOK)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	req, _ := http.NewRequest(http.MethodGet, e.server.URL+"/api/v1/channels", nil)
	req.Header.Set("X-Request-ID", "req-fixed-1")
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request error = %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-fixed-1" {
		t.Errorf("X-Request-ID = %q, want the caller's id", got)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	e := newTestEnv(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, e.server.URL+sessionsPath, nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight error = %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, testOrigin)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testAppConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	e := newTestEnv(t, cfg)

	for i := 0; i < 2; i++ {
		resp, _ := e.do(t, http.MethodGet, "/api/v1/channels", nil)
		expectStatus(t, resp, http.StatusOK)
	}
	resp, env := e.do(t, http.MethodGet, "/api/v1/channels", nil)
	expectStatus(t, resp, http.StatusTooManyRequests)
	expectErrorCode(t, env, ErrCodeTooManyRequests)

	// Health probes have their own budget.
	resp, _ = e.do(t, http.MethodGet, "/api/v1/health/live", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestChiMiddlewareConfigFromSecurity(t *testing.T) {
	cfg := ChiMiddlewareConfigFromSecurity(nil)
	if cfg.RateLimitRequests != 100 || len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("defaults = %+v", cfg)
	}

	sec := testAppConfig().Security
	cfg = ChiMiddlewareConfigFromSecurity(&sec)
	if !cfg.RateLimitDisabled || cfg.CORSAllowedOrigins[0] != testOrigin {
		t.Errorf("from security = %+v", cfg)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
