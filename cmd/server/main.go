// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/naatfeed/internal/api"
	"github.com/tomtom215/naatfeed/internal/config"
	"github.com/tomtom215/naatfeed/internal/controller"
	"github.com/tomtom215/naatfeed/internal/database"
	"github.com/tomtom215/naatfeed/internal/events"
	"github.com/tomtom215/naatfeed/internal/logging"
	"github.com/tomtom215/naatfeed/internal/session"
	"github.com/tomtom215/naatfeed/internal/supervisor"
	"github.com/tomtom215/naatfeed/internal/supervisor/services"
	ws "github.com/tomtom215/naatfeed/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("session_store", cfg.Session.Store).
		Int("page_size", cfg.Feed.PageSize).
		Msg("Starting Naatfeed with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the components, serves until SIGINT or SIGTERM and releases
// resources in reverse order of creation.
//
//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	store, err := session.NewStore(session.StoreType(cfg.Session.Store), cfg.Session.StorePath)
	if err != nil {
		return fmt.Errorf("open ordering store: %w", err)
	}
	cache := session.NewCache(store, cfg.Session.TTL, logging.WithComponent("session"))
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ordering store")
		}
	}()

	sessions, err := controller.NewManager(cfg.ControllerSettings(), db, db, cache,
		cfg.Session.IdleTimeout, logging.WithComponent("feed"))
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}
	defer sessions.Close()

	// Feed state changes and session removals are pushed to websocket clients.
	wsHub := ws.NewHub()
	sessions.OnChange(wsHub.PublishState)
	sessions.OnRemove(wsHub.NotifySessionClosed)

	busLogger := logging.NewWatermillAdapter(logging.WithComponent("events"))
	bus := events.NewBus(events.BusConfig{OutputChannelBuffer: cfg.Events.BufferSize}, busLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	breakerCfg := events.DefaultCircuitBreakerConfig("watch-publisher")
	breakerCfg.FailureThreshold = cfg.Events.BreakerMaxFailures
	breakerCfg.Timeout = cfg.Events.BreakerTimeout
	publisher := events.NewPublisher(bus, events.NewCircuitBreaker(breakerCfg), busLogger)
	defer publisher.Close()

	consumerCfg := events.DefaultConsumerConfig()
	consumerCfg.MaxAttempts = cfg.Events.MaxAttempts
	consumer := events.NewWatchConsumer(bus, db, consumerCfg, busLogger, events.WithPoisonQueue(bus))

	handler := api.NewHandler(cfg, db, sessions, publisher, wsHub)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewSweeperService(sessions, cache, cfg.Session.SweepInterval))
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", wsHub))
	tree.AddMessagingService(services.NewRunnerService("watch-consumer", consumer))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
