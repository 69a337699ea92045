// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package controller

import (
	"errors"
	"fmt"

	"github.com/tomtom215/naatfeed/internal/feed"
)

// Sentinel errors.
var (
	// ErrSessionNotFound is returned when a feed session ID is unknown.
	ErrSessionNotFound = errors.New("feed session not found")

	// ErrControllerClosed is returned by operations on a closed controller.
	ErrControllerClosed = errors.New("feed controller closed")
)

// Config holds pagination settings.
type Config struct {
	// PageSize is the number of items returned per LoadMore.
	PageSize int `json:"page_size"`

	// ReuseThreshold is the fraction of a cached ordering's items that must
	// already be known to the partition for the ordering to be reused as-is.
	ReuseThreshold float64 `json:"reuse_threshold"`

	// Feed configures ranking for personalized partitions.
	Feed *feed.Config `json:"feed"`
}

// DefaultConfig returns the default pagination settings.
func DefaultConfig() Config {
	return Config{
		PageSize:       20,
		ReuseThreshold: 0.8,
		Feed:           feed.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (c Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be >= 1")
	}
	if c.ReuseThreshold <= 0 || c.ReuseThreshold > 1 {
		return fmt.Errorf("reuse_threshold must be in (0, 1], got %v", c.ReuseThreshold)
	}
	if c.Feed == nil {
		return fmt.Errorf("feed config is required")
	}
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	return nil
}
