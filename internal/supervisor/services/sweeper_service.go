// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/naatfeed/internal/logging"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = time.Minute

// IdleSessionSweeper closes feed sessions that have been idle too long.
// Satisfied by *controller.Manager.
type IdleSessionSweeper interface {
	SweepIdle(ctx context.Context) int
}

// ExpiredOrderingSweeper evicts expired cached orderings.
// Satisfied by *session.Cache.
type ExpiredOrderingSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SweeperService periodically removes idle feed sessions and expired
// cached orderings. Either sweeper may be nil.
type SweeperService struct {
	sessions IdleSessionSweeper
	cache    ExpiredOrderingSweeper
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewSweeperService creates a sweeper running every interval. A
// non-positive interval uses DefaultSweepInterval.
func NewSweeperService(sessions IdleSessionSweeper, cache ExpiredOrderingSweeper, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SweeperService{
		sessions: sessions,
		cache:    cache,
		interval: interval,
		logger:   logging.WithComponent("sweeper"),
		name:     "session-sweeper",
	}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs one sweep and returns the number of sessions closed and
// orderings evicted. Cache errors are logged; the next tick retries.
func (s *SweeperService) SweepOnce(ctx context.Context) (sessions, orderings int) {
	if s.sessions != nil {
		sessions = s.sessions.SweepIdle(ctx)
	}
	if s.cache != nil {
		n, err := s.cache.Sweep(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("ordering cache sweep failed")
		}
		orderings = n
	}

	if sessions > 0 || orderings > 0 {
		s.logger.Debug().
			Int("sessions_closed", sessions).
			Int("orderings_evicted", orderings).
			Msg("sweep completed")
	}
	return sessions, orderings
}

func (s *SweeperService) String() string {
	return s.name
}
