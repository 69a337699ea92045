// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/naatfeed/internal/controller"
	"github.com/tomtom215/naatfeed/internal/logging"
	"github.com/tomtom215/naatfeed/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeFeedState     = "feed_state"
	MessageTypeSessionClosed = "session_closed"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
}

// delivery is a message routed to the clients of one session, or to every
// client when sessionID is empty.
type delivery struct {
	sessionID string
	message   Message
}

// Hub maintains the set of active clients and routes feed updates to the
// clients watching each session.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan delivery
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan delivery, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// connected client and returns ctx.Err().
//
// Lifecycle events are drained before deliveries so a client registered
// ahead of a message always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().
		Str("session_id", client.sessionID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		client.closeSend()
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	metrics.WSConnections.Set(float64(total))
	logging.Info().
		Str("session_id", client.sessionID).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs the shutdown. ctx.Err()
// is not logged as an error; cancellation is the normal shutdown path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients returns the clients ordered by ID. Caller holds h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// deliver sends a message to its target clients in ID order. Clients whose
// send buffer is full are disconnected.
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		if d.sessionID != "" && client.sessionID != d.sessionID {
			continue
		}
		if !client.Send(d.message) {
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		client.closeSend()
		delete(h.clients, client)
		logging.Warn().
			Str("session_id", client.sessionID).
			Uint64("client_id", client.id).
			Msg("websocket client too slow, disconnected")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		client.closeSend()
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	default:
		logging.Warn().
			Str("message_type", d.message.Type).
			Str("session_id", d.sessionID).
			Msg("broadcast channel full, dropping message")
	}
}

// PublishState pushes a feed snapshot to the clients of one session.
// Its signature matches controller.Manager.OnChange.
func (h *Hub) PublishState(sessionID string, st controller.State) {
	h.enqueue(delivery{
		sessionID: sessionID,
		message: Message{
			Type:      MessageTypeFeedState,
			SessionID: sessionID,
			Data:      st.Page(sessionID),
		},
	})
}

// NotifySessionClosed tells a session's clients that the session was
// deleted or swept.
func (h *Hub) NotifySessionClosed(sessionID string) {
	h.enqueue(delivery{
		sessionID: sessionID,
		message:   Message{Type: MessageTypeSessionClosed, SessionID: sessionID},
	})
}

// BroadcastJSON sends a message to all connected clients
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	h.enqueue(delivery{message: Message{Type: messageType, Data: data}})
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionClientCount returns the number of clients watching sessionID.
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.sessionID == sessionID {
			n++
		}
	}
	return n
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
