// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

// Package logging provides centralized zerolog-based structured logging for Naatfeed.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Feed load failed")
//
// Components receive a zerolog.Logger by value and add their own component
// field:
//
//	logger := logging.WithComponent("feed")
//
// # Context Fields
//
// Ctx adds correlation_id, request_id, and session_id when present on the
// context. The HTTP middleware sets the request ID; feed handlers set the
// session ID.
//
// # Adapters
//
//   - SlogHandler / NewSlogLogger: slog.Handler for sutureslog
//   - WatermillAdapter: watermill.LoggerAdapter for the event bus
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
