// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Command server runs the Naatfeed feed service: a paginated, personalized feed
of short devotional clips served over HTTP and websockets.

# Architecture

	root ("naatfeed")
	├── data-layer
	│   └── session-sweeper   idle feed sessions, expired cached orderings
	├── messaging-layer
	│   ├── websocket-hub     pushes feed state to the session's clients
	│   └── watch-consumer    persists watch events from the in-process bus
	└── api-layer
	    └── http-server       chi router, /api/v1 and /metrics

Initialization order:

 1. Configuration: koanf (defaults, optional config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB content repository and watch history
 4. Ordering cache: memory or BadgerDB store
 5. Session manager: one feed controller per client session
 6. Event bus: watermill gochannel with a circuit-broken publisher
 7. HTTP router and the supervisor tree

# Configuration

Environment variables override config.yaml, which overrides defaults:

	HTTP_HOST=0.0.0.0
	HTTP_PORT=3857
	DUCKDB_PATH=/data/naatfeed.duckdb
	HISTORY_CAP=200                 # watch entries retained
	FEED_PAGE_SIZE=20
	FEED_WIDENING_RATE=2            # background batch fetches per second
	SESSION_STORE=memory            # memory or badger
	SESSION_STORE_PATH=/data/orderings
	SESSION_TTL=1h
	SESSION_IDLE_TIMEOUT=2h
	CORS_ORIGINS=https://app.example.com
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to SHUTDOWN_TIMEOUT and websocket clients are closed. The event bus, the
feed sessions, the ordering store and the database are closed in that order.
*/
package main
