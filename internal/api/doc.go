// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package api provides the HTTP surface of the feed service.

Routes are served by a chi router (see Router.SetupChi). Every response uses
the models.APIResponse envelope:

	{"status": "success"|"error", "data": ..., "metadata": {...}, "error": {...}}

Feed Sessions:

A feed session is one screen's paginated view of the feed, owned by a
controller.Controller inside the session manager.

	POST   /api/v1/feed/sessions               create, loads the first page
	GET    /api/v1/feed/sessions/{id}          current state
	POST   /api/v1/feed/sessions/{id}/more     load the next page
	POST   /api/v1/feed/sessions/{id}/refresh  drop cached pages and reload
	PUT    /api/v1/feed/sessions/{id}/filter   switch channel or sort mode
	DELETE /api/v1/feed/sessions/{id}          dispose the session
	GET    /api/v1/feed/sessions/{id}/ws       websocket stream of state

State responses carry a models.FeedPage. When the content repository fails,
the response status is 502 with error code FETCH_ERROR and data still holds
the items that were already loaded.

Content and History:

	POST   /api/v1/items      bulk upsert of ingested content items
	GET    /api/v1/items/{id} one item
	GET    /api/v1/channels   channels with item counts
	GET    /api/v1/history    most recent watches first
	POST   /api/v1/history    record a watch (asynchronous, 202)
	DELETE /api/v1/history    clear the watch history

Watches are published to the events bus and persisted by the watch
consumer, so a recorded watch affects the next ranking pass, not
orderings already cached.

Operations:

	GET /api/v1/health/live         liveness
	GET /api/v1/health/ready        readiness (database ping)
	GET /api/v1/health/performance  recent request latency percentiles
	GET /metrics                    Prometheus exposition
*/
package api
