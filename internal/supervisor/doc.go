// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package supervisor runs the server's long-running services under a suture v4
supervisor tree.

	root ("naatfeed")
	├── data-layer
	│   └── session-sweeper     idle feed sessions, expired cached orderings
	├── messaging-layer
	│   ├── websocket-hub       per-session feed state streaming
	│   └── watch-consumer      watch events into the history store
	└── api-layer
	    └── http-server         chi router

A service that returns an error is restarted; repeated failures put its
layer into backoff (FailureThreshold, FailureDecay, FailureBackoff).
Canceling the context passed to Serve stops every service, each bounded by
ShutdownTimeout; UnstoppedServiceReport names the ones that overran.

Supervisor events are logged through sutureslog into the zerolog pipeline:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewSweeperService(manager, cache, time.Minute))
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)

The service wrappers live in package services.
*/
package supervisor
