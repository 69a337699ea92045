// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tomtom215/naatfeed/internal/models"
)

// lockedRand is a RandomSource safe for concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// NewRandom returns a concurrency-safe RandomSource.
// A zero seed seeds from the current time.
func NewRandom(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // ranking jitter, not security
}

// Signals is the per-pass context needed to score one item.
type Signals struct {
	// MaxViews is the largest view count in the candidate set.
	MaxViews int64

	// PriorSameChannel counts earlier items from the same channel in this pass.
	PriorSameChannel int

	// Watched reports whether the viewer has already seen the item.
	Watched bool
}

// Scorer computes composite relevance scores.
// It is safe for concurrent use provided its RandomSource is.
type Scorer struct {
	weights        Weights
	halfLifeDays   float64
	diversityDecay float64
	rnd            RandomSource
	now            func() time.Time
}

// NewScorer creates a scorer. now may be nil, in which case time.Now is used.
func NewScorer(cfg *Config, rnd RandomSource, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = NewRandom(cfg.Seed)
	}
	return &Scorer{
		weights:        cfg.Weights,
		halfLifeDays:   cfg.RecencyHalfLife.Hours() / 24,
		diversityDecay: cfg.DiversityDecay,
		rnd:            rnd,
		now:            now,
	}
}

// Recency returns exp(-ln2 * ageDays / halfLifeDays). Future timestamps count as age 0.
func (s *Scorer) Recency(uploadedAt time.Time) float64 {
	ageDays := s.now().Sub(uploadedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-math.Ln2 * ageDays / s.halfLifeDays)
}

// Popularity returns views normalized against the candidate set maximum.
func Popularity(views, maxViews int64) float64 {
	if views <= 0 {
		return 0
	}
	if maxViews < 1 {
		maxViews = 1
	}
	p := float64(views) / float64(maxViews)
	if p > 1 {
		p = 1
	}
	return p
}

// Diversity returns decay^prior.
func (s *Scorer) Diversity(prior int) float64 {
	if prior <= 0 {
		return 1
	}
	return math.Pow(s.diversityDecay, float64(prior))
}

// Score computes the composite score of a single item.
func (s *Scorer) Score(item *models.ContentItem, sig Signals) ScoredItem {
	b := ScoreBreakdown{
		Recency:    s.Recency(item.UploadedAt),
		Popularity: Popularity(item.Views, sig.MaxViews),
		Diversity:  s.Diversity(sig.PriorSameChannel),
		Random:     s.rnd.Float64(),
	}
	if !sig.Watched {
		b.Novelty = 1
	}

	w := s.weights
	score := w.Recency*b.Recency +
		w.Popularity*b.Popularity +
		w.Diversity*b.Diversity +
		w.Novelty*b.Novelty +
		w.Random*b.Random
	if score < 0 || math.IsNaN(score) {
		score = 0
	}

	return ScoredItem{Item: *item, Score: score, Breakdown: b}
}

// ScoreAll scores a candidate set in input order. Diversity counts are taken
// from the items preceding each one in the input, so the same candidate list
// always receives the same deterministic signals apart from the random term.
func (s *Scorer) ScoreAll(items []models.ContentItem, watched map[string]struct{}) []ScoredItem {
	var maxViews int64
	for i := range items {
		if items[i].Views > maxViews {
			maxViews = items[i].Views
		}
	}

	seenChannels := make(map[string]int)
	scored := make([]ScoredItem, len(items))
	for i := range items {
		_, isWatched := watched[items[i].ID]
		scored[i] = s.Score(&items[i], Signals{
			MaxViews:         maxViews,
			PriorSameChannel: seenChannels[items[i].ChannelID],
			Watched:          isWatched,
		})
		seenChannels[items[i].ChannelID]++
	}
	return scored
}
