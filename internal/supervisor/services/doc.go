// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package services adapts the server's long-running components to suture's
Serve(ctx) error contract.

	HTTPServerService  *http.Server, drained with Shutdown on cancel
	RunnerService      anything with RunWithContext (websocket hub, watch consumer)
	SweeperService     ticker closing idle feed sessions and evicting expired orderings

Every service returns ctx.Err() when its context is canceled and a non-nil
error when it fails, which the supervisor answers with a restart. Each
implements fmt.Stringer so supervisor events name the service.
*/
package services
