// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package config

import (
	"time"

	"github.com/tomtom215/naatfeed/internal/controller"
	"github.com/tomtom215/naatfeed/internal/feed"
)

// Config holds all application configuration loaded from defaults, an optional
// config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database, cfg.Feed.Seed)
//
// Config is immutable after loading and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Feed     FeedConfig     `koanf:"feed"`
	Session  SessionConfig  `koanf:"session"`
	Security SecurityConfig `koanf:"security"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)

	// HistoryCap is the number of most recent watch entries retained.
	HistoryCap int `koanf:"history_cap"`
}

// FeedConfig holds ranking and pagination settings.
type FeedConfig struct {
	Weights           WeightsConfig `koanf:"weights"`
	RecencyHalfLife   time.Duration `koanf:"recency_half_life"`
	DiversityDecay    float64       `koanf:"diversity_decay"`
	InitialBatchSize  int           `koanf:"initial_batch_size"`
	WideningBatchSize int           `koanf:"widening_batch_size"`
	MaxCandidates     int           `koanf:"max_candidates"`
	WideningRate      float64       `koanf:"widening_rate"` // Widening fetches per second (0 = unlimited)
	PageSize          int           `koanf:"page_size"`
	ReuseThreshold    float64       `koanf:"reuse_threshold"`
	Seed              int64         `koanf:"seed"` // 0 seeds from the clock
}

// WeightsConfig holds the scoring signal weights. They must sum to 1.
type WeightsConfig struct {
	Recency    float64 `koanf:"recency"`
	Popularity float64 `koanf:"popularity"`
	Diversity  float64 `koanf:"diversity"`
	Novelty    float64 `koanf:"novelty"`
	Random     float64 `koanf:"random"`
}

// SessionConfig holds ordering cache and feed session settings.
type SessionConfig struct {
	// TTL is how long a cached ordering stays valid after it is stored.
	TTL time.Duration `koanf:"ttl"`

	// Store selects the ordering cache backend: "memory" (default) or "badger".
	Store string `koanf:"store"`

	// StorePath is the BadgerDB directory (empty runs BadgerDB in memory).
	StorePath string `koanf:"store_path"`

	// IdleTimeout closes feed sessions with no activity (0 disables).
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// SweepInterval is how often idle sessions and expired orderings are swept.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// EventsConfig holds in-process event bus settings.
type EventsConfig struct {
	// BufferSize is the per-subscriber output channel buffer.
	BufferSize int64 `koanf:"buffer_size"`

	// BreakerMaxFailures is the number of consecutive publish failures that
	// opens the circuit breaker.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// MaxAttempts is how many times the consumer tries to persist a watch
	// event before dropping it.
	MaxAttempts int `koanf:"max_attempts"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// FeedSettings converts the feed section into ranking configuration.
func (c *Config) FeedSettings() *feed.Config {
	f := c.Feed
	return &feed.Config{
		Weights: feed.Weights{
			Recency:    f.Weights.Recency,
			Popularity: f.Weights.Popularity,
			Diversity:  f.Weights.Diversity,
			Novelty:    f.Weights.Novelty,
			Random:     f.Weights.Random,
		},
		RecencyHalfLife:   f.RecencyHalfLife,
		DiversityDecay:    f.DiversityDecay,
		InitialBatchSize:  f.InitialBatchSize,
		WideningBatchSize: f.WideningBatchSize,
		MaxCandidates:     f.MaxCandidates,
		WideningRate:      f.WideningRate,
		Seed:              f.Seed,
	}
}

// ControllerSettings converts the feed section into pagination configuration.
func (c *Config) ControllerSettings() controller.Config {
	return controller.Config{
		PageSize:       c.Feed.PageSize,
		ReuseThreshold: c.Feed.ReuseThreshold,
		Feed:           c.FeedSettings(),
	}
}
