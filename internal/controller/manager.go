// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/naatfeed/internal/feed"
	"github.com/tomtom215/naatfeed/internal/metrics"
	"github.com/tomtom215/naatfeed/internal/models"
	"github.com/tomtom215/naatfeed/internal/session"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerClock sets the clock used for idle tracking.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithControllerOptions passes options to every controller the manager creates.
func WithControllerOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.ctrlOpts = append(m.ctrlOpts, opts...) }
}

type managedSession struct {
	ctrl       *Controller
	lastAccess time.Time
}

// Manager owns the live feed sessions of the server. Each session is an
// independent Controller whose cache keys are prefixed with its ID.
type Manager struct {
	cfg         Config
	source      feed.ContentSource
	history     feed.HistorySource
	cache       *session.Cache
	idleTimeout time.Duration
	logger      zerolog.Logger
	now         func() time.Time
	ctrlOpts    []Option

	mu       sync.RWMutex
	sessions map[string]*managedSession
	onChange func(id string, st State)
	onRemove func(id string)
	closed   bool
}

// NewManager creates a session manager. Sessions idle for longer than
// idleTimeout are removed by SweepIdle; zero disables idle expiry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewManager(cfg Config, source feed.ContentSource, history feed.HistorySource, cache *session.Cache, idleTimeout time.Duration, logger zerolog.Logger, opts ...ManagerOption) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller config: %w", err)
	}
	m := &Manager{
		cfg:         cfg,
		source:      source,
		history:     history,
		cache:       cache,
		idleTimeout: idleTimeout,
		logger:      logger.With().Str("component", "session_manager").Logger(),
		now:         time.Now,
		sessions:    make(map[string]*managedSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// OnChange registers a callback receiving state snapshots of every session.
// It applies to sessions created afterwards.
func (m *Manager) OnChange(fn func(id string, st State)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// OnRemove registers a callback invoked after a session is removed, either
// explicitly or by SweepIdle.
func (m *Manager) OnRemove(fn func(id string)) {
	m.mu.Lock()
	m.onRemove = fn
	m.mu.Unlock()
}

// Create starts a session on filter and loads its first page.
// If the first load fails the session is discarded.
func (m *Manager) Create(ctx context.Context, filter models.FeedFilter) (string, *Controller, error) {
	id := uuid.New().String()

	opts := append([]Option{WithKeyPrefix(id + "/")}, m.ctrlOpts...)
	ctrl, err := New(m.cfg, m.source, m.history, m.cache, filter, m.logger, opts...)
	if err != nil {
		return "", nil, err
	}

	if _, err := ctrl.LoadMore(ctx); err != nil {
		ctrl.Close()
		m.cache.InvalidatePrefix(ctx, id+"/")
		return "", nil, fmt.Errorf("load first page: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		ctrl.Close()
		return "", nil, ErrControllerClosed
	}
	if fn := m.onChange; fn != nil {
		ctrl.OnChange(func(st State) { fn(id, st) })
	}
	m.sessions[id] = &managedSession{ctrl: ctrl, lastAccess: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.FeedSessionsActive.Set(float64(count))
	m.logger.Debug().Str("session_id", id).Str("filter", filter.Key()).Msg("feed session created")
	return id, ctrl, nil
}

// Get returns the controller for id and marks the session as active.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastAccess = m.now()
	return s.ctrl, nil
}

// Remove closes the session and drops its cached orderings.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	onRemove := m.onRemove
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.ctrl.Close()
	m.cache.InvalidatePrefix(ctx, id+"/")
	metrics.FeedSessionsActive.Set(float64(count))
	if onRemove != nil {
		onRemove(id)
	}
	return nil
}

// SweepIdle removes sessions idle for longer than the idle timeout.
func (m *Manager) SweepIdle(ctx context.Context) int {
	if m.idleTimeout <= 0 {
		return 0
	}

	now := m.now()
	var idle []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if now.Sub(s.lastAccess) > m.idleTimeout {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range idle {
		if err := m.Remove(ctx, id); err == nil {
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("swept idle feed sessions")
	}
	return removed
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes every session. Cached orderings are left for their TTL.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.ctrl.Close()
	}
	metrics.FeedSessionsActive.Set(0)
}
