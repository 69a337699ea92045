// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Topics.
const (
	// TopicWatchRecorded carries WatchEvent payloads.
	TopicWatchRecorded = "watch.recorded"

	// TopicWatchDropped receives watch events that failed every attempt.
	TopicWatchDropped = "watch.dropped"
)

// Sentinel errors.
var (
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("event publisher closed")

	// ErrInvalidEvent is returned when an event fails validation.
	ErrInvalidEvent = errors.New("invalid event")
)

// WatchEvent records that the viewer consumed a content item.
type WatchEvent struct {
	EventID   string    `json:"event_id"`
	ItemID    string    `json:"item_id"`
	SessionID string    `json:"session_id,omitempty"`
	WatchedAt time.Time `json:"watched_at"`
}

// NewWatchEvent creates a WatchEvent with a fresh event ID.
func NewWatchEvent(itemID, sessionID string, watchedAt time.Time) *WatchEvent {
	return &WatchEvent{
		EventID:   uuid.New().String(),
		ItemID:    itemID,
		SessionID: sessionID,
		WatchedAt: watchedAt.UTC(),
	}
}

// Validate checks required fields.
func (e *WatchEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	}
	if e.ItemID == "" {
		return fmt.Errorf("%w: item_id is required", ErrInvalidEvent)
	}
	if e.WatchedAt.IsZero() {
		return fmt.Errorf("%w: watched_at is required", ErrInvalidEvent)
	}
	return nil
}

// MarshalWatchEvent validates and encodes an event.
func MarshalWatchEvent(e *WatchEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalWatchEvent decodes and validates an event.
func UnmarshalWatchEvent(data []byte) (*WatchEvent, error) {
	var e WatchEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
