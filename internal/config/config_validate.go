// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package config

import (
	"fmt"
	"time"
)

// Rate limiting bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreBadger = "badger"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateDatabase validates database configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	if c.Database.HistoryCap < 1 {
		return fmt.Errorf("HISTORY_CAP must be >= 1")
	}
	return nil
}

// validateFeed validates ranking and pagination configuration. Ranking
// settings are checked by the feed package itself.
func (c *Config) validateFeed() error {
	if err := c.ControllerSettings().Validate(); err != nil {
		return fmt.Errorf("feed configuration invalid: %w", err)
	}
	return nil
}

// validateSession validates the ordering cache configuration
func (c *Config) validateSession() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreBadger:
	default:
		return fmt.Errorf("SESSION_STORE must be one of: %s, %s", SessionStoreMemory, SessionStoreBadger)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be >= 0")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// validateRateLimits validates rate limiting configuration
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateEvents validates event bus configuration
func (c *Config) validateEvents() error {
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must be >= 0")
	}
	if c.Events.BreakerMaxFailures == 0 {
		return fmt.Errorf("EVENTS_BREAKER_MAX_FAILURES must be >= 1")
	}
	if c.Events.BreakerTimeout <= 0 {
		return fmt.Errorf("EVENTS_BREAKER_TIMEOUT must be positive")
	}
	if c.Events.MaxAttempts < 1 {
		return fmt.Errorf("EVENTS_MAX_ATTEMPTS must be >= 1")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
