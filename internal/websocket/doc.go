// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package websocket pushes live feed session updates to connected clients.

Each client follows exactly one feed session, chosen when it connects to
/api/v1/feed/sessions/{id}/ws. Whenever the session's controller changes state
(a page arrives, a load starts or fails, the personalized ordering widens
in the background) the session manager calls Hub.PublishState and the hub
forwards a feed_state message to the clients of that session only.

Key Components:

  - Hub: owns the client set and routes messages by session ID
  - Client: one WebSocket connection with a read and a write goroutine
  - Message: typed envelope, {"type", "session_id", "data"}

Message Types:

  - feed_state: data is a models.FeedPage snapshot of the session
  - session_closed: the session was deleted or expired
  - ping / pong: application-level keepalive sent by the client

Wiring:

	hub := websocket.NewHub()
	manager.OnChange(hub.PublishState)
	go hub.RunWithContext(ctx) // supervised in production

Slow Clients:

Each client has a bounded send buffer. When a delivery finds it full the
client is disconnected rather than blocking the hub; the client can
reconnect and will receive the next snapshot.

Thread Safety:

All Hub methods are safe for concurrent use. Client state is owned by its
two pump goroutines.
*/
package websocket
