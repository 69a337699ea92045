// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package services

import (
	"context"
)

// ContextRunner is a component with its own context-driven run loop.
// Satisfied by *websocket.Hub and *events.WatchConsumer.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService supervises a ContextRunner under a fixed name.
//
//	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub))
//	tree.AddMessagingService(services.NewRunnerService("watch-consumer", consumer))
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService wraps runner.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// Serve implements suture.Service by delegating to RunWithContext.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.runner.RunWithContext(ctx)
}

func (r *RunnerService) String() string {
	return r.name
}
