// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"history cap zero", func(c *Config) { c.Database.HistoryCap = 0 }, true},
		{"weights do not sum to one", func(c *Config) { c.Feed.Weights.Recency = 0.5 }, true},
		{"random weight zero", func(c *Config) {
			c.Feed.Weights.Random = 0
			c.Feed.Weights.Recency = 0.35
		}, true},
		{"weights within tolerance", func(c *Config) { c.Feed.Weights.Random = 0.1000000001 }, false},
		{"zero page size", func(c *Config) { c.Feed.PageSize = 0 }, true},
		{"zero initial batch", func(c *Config) { c.Feed.InitialBatchSize = 0 }, true},
		{"zero widening batch", func(c *Config) { c.Feed.WideningBatchSize = 0 }, true},
		{"reuse threshold zero", func(c *Config) { c.Feed.ReuseThreshold = 0 }, true},
		{"reuse threshold above one", func(c *Config) { c.Feed.ReuseThreshold = 1.1 }, true},
		{"reuse threshold one", func(c *Config) { c.Feed.ReuseThreshold = 1 }, false},
		{"unknown store", func(c *Config) { c.Session.Store = "redis" }, true},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, true},
		{"rate limit out of range", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, false},
		{"rate window too short", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, true},
		{"breaker failures zero", func(c *Config) { c.Events.BreakerMaxFailures = 0 }, true},
		{"max attempts zero", func(c *Config) { c.Events.MaxAttempts = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"empty log format", func(c *Config) { c.Logging.Format = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestControllerSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Feed.PageSize = 15
	cfg.Feed.Seed = 99

	ctrl := cfg.ControllerSettings()
	if ctrl.PageSize != 15 {
		t.Errorf("PageSize = %d, want 15", ctrl.PageSize)
	}
	if ctrl.ReuseThreshold != 0.8 {
		t.Errorf("ReuseThreshold = %v, want 0.8", ctrl.ReuseThreshold)
	}
	if ctrl.Feed == nil {
		t.Fatal("Feed config is nil")
	}
	if ctrl.Feed.Seed != 99 {
		t.Errorf("Feed.Seed = %d, want 99", ctrl.Feed.Seed)
	}
	if ctrl.Feed.Weights.Popularity != 0.30 {
		t.Errorf("Feed.Weights.Popularity = %v, want 0.30", ctrl.Feed.Weights.Popularity)
	}
	if ctrl.Feed.RecencyHalfLife != 7*24*time.Hour {
		t.Errorf("Feed.RecencyHalfLife = %v, want 168h", ctrl.Feed.RecencyHalfLife)
	}
}
