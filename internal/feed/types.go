// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"context"
	"errors"

	"github.com/tomtom215/naatfeed/internal/models"
)

// Sentinel errors returned by the assembler.
var (
	// ErrAssemblerClosed is returned when Start is called after Close.
	ErrAssemblerClosed = errors.New("feed assembler closed")

	// ErrAssemblerReset is returned by Start when Reset superseded the run.
	ErrAssemblerReset = errors.New("feed assembler reset during initial load")
)

// PageRequest describes one page fetch from the content repository.
type PageRequest struct {
	Limit     int
	Offset    int
	Sort      models.SortMode
	ChannelID string
}

// ContentSource is the paginated content repository consumed by the feed.
// Returning fewer than Limit items signals end of data.
type ContentSource interface {
	FetchPage(ctx context.Context, req PageRequest) ([]models.ContentItem, error)
}

// HistorySource provides the identifiers the viewer has already watched.
type HistorySource interface {
	WatchedIDs(ctx context.Context) (map[string]struct{}, error)
}

// RandomSource yields uniform values in [0, 1).
// *rand.Rand satisfies it but is not safe for concurrent use; see NewRandom.
type RandomSource interface {
	Float64() float64
}

// ScoreBreakdown holds the individual signal values behind a score.
type ScoreBreakdown struct {
	Recency    float64 `json:"recency"`
	Popularity float64 `json:"popularity"`
	Diversity  float64 `json:"diversity"`
	Novelty    float64 `json:"novelty"`
	Random     float64 `json:"random"`
}

// ScoredItem pairs a content item with its composite score for one ranking pass.
type ScoredItem struct {
	// Item is the scored content.
	Item models.ContentItem `json:"item"`

	// Score is the weighted composite, finite and non-negative.
	Score float64 `json:"score"`

	// Breakdown holds the unweighted signal values.
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// State is the assembler's position in its lifecycle.
type State int

const (
	// StateCold means no ordering has been computed.
	StateCold State = iota

	// StateInitialRanked means the first batch is ranked and usable.
	StateInitialRanked

	// StateWidening means background batches are being merged and re-ranked.
	StateWidening

	// StateComplete means the repository is exhausted (or widening stopped).
	StateComplete
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCold:
		return "cold"
	case StateInitialRanked:
		return "initial_ranked"
	case StateWidening:
		return "widening"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Ordering is one realized ranking. Items is never mutated after publication.
type Ordering struct {
	// Items is the ranked sequence.
	Items []models.ContentItem

	// Generation identifies the assembler run that produced the ordering.
	Generation uint64

	// Batches counts the repository batches merged into the candidate set.
	Batches int
}

// IDs returns the item identifiers in order.
//
//nolint:gocritic // value receiver keeps Ordering usable as a plain value
func (o Ordering) IDs() []string {
	ids := make([]string, len(o.Items))
	for i := range o.Items {
		ids[i] = o.Items[i].ID
	}
	return ids
}
