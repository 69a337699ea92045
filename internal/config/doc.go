// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package config provides centralized configuration management for Naatfeed.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file (CONFIG_PATH, config.yaml, /etc/naatfeed/config.yaml), then environment
variables. Later layers override earlier ones.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 3857), HTTP_TIMEOUT, SHUTDOWN_TIMEOUT

Database (DuckDB):
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - HISTORY_CAP: watch entries retained for novelty (default 200)

Feed ranking:
  - FEED_WEIGHT_RECENCY, FEED_WEIGHT_POPULARITY, FEED_WEIGHT_DIVERSITY,
    FEED_WEIGHT_NOVELTY, FEED_WEIGHT_RANDOM (must sum to 1)
  - FEED_RECENCY_HALF_LIFE, FEED_DIVERSITY_DECAY
  - FEED_INITIAL_BATCH (40), FEED_WIDENING_BATCH (500), FEED_MAX_CANDIDATES
  - FEED_WIDENING_RATE, FEED_PAGE_SIZE (20), FEED_REUSE_THRESHOLD (0.8), FEED_SEED

Sessions:
  - SESSION_TTL (1h), SESSION_STORE (memory|badger), SESSION_STORE_PATH
  - SESSION_IDLE_TIMEOUT, SESSION_SWEEP_INTERVAL

Security:
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT

Events:
  - EVENTS_BUFFER_SIZE, EVENTS_BREAKER_MAX_FAILURES, EVENTS_BREAKER_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	ctrlCfg := cfg.ControllerSettings()

Validation failures are returned from LoadWithKoanf; the process should exit
rather than run with a partially valid configuration.
*/
package config
