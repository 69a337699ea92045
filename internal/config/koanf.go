// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/naatfeed/config.yaml",
}

// ConfigPathEnvVar names the environment variable holding an explicit config path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config populated with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:       "/data/naatfeed.duckdb",
			MaxMemory:  "512MB",
			Threads:    0,
			HistoryCap: 200,
		},
		Feed: FeedConfig{
			Weights: WeightsConfig{
				Recency:    0.25,
				Popularity: 0.30,
				Diversity:  0.20,
				Novelty:    0.15,
				Random:     0.10,
			},
			RecencyHalfLife:   7 * 24 * time.Hour,
			DiversityDecay:    0.7,
			InitialBatchSize:  40,
			WideningBatchSize: 500,
			MaxCandidates:     10000,
			WideningRate:      2,
			PageSize:          20,
			ReuseThreshold:    0.8,
			Seed:              0,
		},
		Session: SessionConfig{
			TTL:           time.Hour,
			Store:         "memory",
			StorePath:     "",
			IdleTimeout:   2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Events: EventsConfig{
			BufferSize:         256,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			MaxAttempts:        3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using the layered approach:
// defaults, then the optional config file, then environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"history_cap":       "database.history_cap",

	// Feed ranking
	"feed_weight_recency":    "feed.weights.recency",
	"feed_weight_popularity": "feed.weights.popularity",
	"feed_weight_diversity":  "feed.weights.diversity",
	"feed_weight_novelty":    "feed.weights.novelty",
	"feed_weight_random":     "feed.weights.random",
	"feed_recency_half_life": "feed.recency_half_life",
	"feed_diversity_decay":   "feed.diversity_decay",
	"feed_initial_batch":     "feed.initial_batch_size",
	"feed_widening_batch":    "feed.widening_batch_size",
	"feed_max_candidates":    "feed.max_candidates",
	"feed_widening_rate":     "feed.widening_rate",
	"feed_page_size":         "feed.page_size",
	"feed_reuse_threshold":   "feed.reuse_threshold",
	"feed_seed":              "feed.seed",

	// Sessions
	"session_ttl":            "session.ttl",
	"session_store":          "session.store",
	"session_store_path":     "session.store_path",
	"session_idle_timeout":   "session.idle_timeout",
	"session_sweep_interval": "session.sweep_interval",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"rate_limit_disabled": "security.rate_limit_disabled",

	// Events
	"events_buffer_size":          "events.buffer_size",
	"events_breaker_max_failures": "events.breaker_max_failures",
	"events_breaker_timeout":      "events.breaker_timeout",
	"events_max_attempts":         "events.max_attempts",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored, so unrelated process
// environment never leaks into the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - FEED_INITIAL_BATCH -> feed.initial_batch_size
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
