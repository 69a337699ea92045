// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package models

import (
	"fmt"
	"strings"
	"time"
)

// ContentItem is one ingested clip. Values are treated as immutable once loaded
// from the repository.
type ContentItem struct {
	// ID is the globally unique identifier (the upstream video ID).
	ID string `json:"id" validate:"required,max=64"`

	// Title is the display title of the clip.
	Title string `json:"title" validate:"required,max=512"`

	// UploadedAt is when the clip was published upstream.
	UploadedAt time.Time `json:"uploaded_at" validate:"required"`

	// Views is the upstream view count.
	Views int64 `json:"views" validate:"gte=0"`

	// ChannelID identifies the source channel.
	ChannelID string `json:"channel_id" validate:"required,max=64"`

	// ChannelName is the channel display name.
	ChannelName string `json:"channel_name,omitempty" validate:"max=256"`

	// ThumbnailURL references the preview image.
	ThumbnailURL string `json:"thumbnail_url,omitempty" validate:"omitempty,url"`

	// MediaURL references the playable media.
	MediaURL string `json:"media_url,omitempty" validate:"omitempty,url"`

	// DurationSeconds is the clip length (0 when unknown).
	DurationSeconds int `json:"duration_seconds,omitempty" validate:"gte=0"`
}

// WatchHistoryEntry records one consumption of a content item.
type WatchHistoryEntry struct {
	ItemID    string    `json:"item_id"`
	WatchedAt time.Time `json:"watched_at"`
}

// SortMode selects how a feed is ordered.
type SortMode string

const (
	// SortForYou is the personalized ranking produced by the feed assembler.
	SortForYou SortMode = "for_you"

	// SortRecent orders by upload time, newest first.
	SortRecent SortMode = "recent"

	// SortPopular orders by view count, highest first.
	SortPopular SortMode = "popular"
)

// ParseSortMode converts a request value into a SortMode.
// An empty value selects SortForYou.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortForYou:
		return SortForYou, nil
	case SortRecent:
		return SortRecent, nil
	case SortPopular:
		return SortPopular, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// Personalized reports whether the mode is ranked by the feed assembler.
func (m SortMode) Personalized() bool {
	return m == SortForYou
}

// String returns the wire name of the mode.
func (m SortMode) String() string {
	return string(m)
}

// AllChannels is the channel filter value meaning "no channel filter".
const AllChannels = "all"

// FeedFilter identifies one feed partition: a channel filter plus a sort mode.
type FeedFilter struct {
	// ChannelID restricts the feed to one channel. Empty means all channels.
	ChannelID string `json:"channel_id,omitempty"`

	// Sort is the ordering mode.
	Sort SortMode `json:"sort_mode"`
}

// Key returns the partition key for the filter.
func (f FeedFilter) Key() string {
	channel := f.ChannelID
	if channel == "" {
		channel = AllChannels
	}
	sort := f.Sort
	if sort == "" {
		sort = SortForYou
	}
	return channel + "|" + string(sort)
}

// Normalized returns the filter with defaults applied: an "all" channel
// becomes empty and an empty sort becomes SortForYou.
func (f FeedFilter) Normalized() FeedFilter {
	if f.ChannelID == AllChannels {
		f.ChannelID = ""
	}
	if f.Sort == "" {
		f.Sort = SortForYou
	}
	return f
}

// Channel returns the repository channel filter, empty for all channels.
func (f FeedFilter) Channel() string {
	if f.ChannelID == AllChannels {
		return ""
	}
	return f.ChannelID
}

// ChannelSummary describes one channel present in the repository.
type ChannelSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	ItemCount int64  `json:"item_count"`
}
