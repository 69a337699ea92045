// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"fmt"
	"math"
	"time"
)

// weightTolerance bounds floating point error when checking that weights sum to 1.
const weightTolerance = 1e-6

// Config contains all configuration for feed ranking.
type Config struct {
	// Weights defines the contribution of each scoring signal.
	Weights Weights `json:"weights"`

	// RecencyHalfLife is the age at which the recency signal halves.
	RecencyHalfLife time.Duration `json:"recency_half_life"`

	// DiversityDecay is the multiplier applied per earlier placement of the same
	// channel within a ranking pass. Must be in (0, 1].
	DiversityDecay float64 `json:"diversity_decay"`

	// InitialBatchSize is the number of candidates ranked for first paint.
	InitialBatchSize int `json:"initial_batch_size"`

	// WideningBatchSize is the number of candidates fetched per background batch.
	WideningBatchSize int `json:"widening_batch_size"`

	// MaxCandidates caps the accumulated candidate set. Widening completes once
	// it is reached.
	MaxCandidates int `json:"max_candidates"`

	// WideningRate limits background batch fetches per second. Zero means unlimited.
	WideningRate float64 `json:"widening_rate"`

	// Seed seeds the random source. Zero seeds from the clock so that orderings
	// differ between processes.
	Seed int64 `json:"seed"`
}

// Weights defines the relative contribution of each scoring signal.
// Unlike recommendation ensembles these are not normalized at runtime: they must
// already sum to 1, and Random must stay positive so ties are always broken.
type Weights struct {
	Recency    float64 `json:"recency"`
	Popularity float64 `json:"popularity"`
	Diversity  float64 `json:"diversity"`
	Novelty    float64 `json:"novelty"`
	Random     float64 `json:"random"`
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Recency:    0.25,
		Popularity: 0.30,
		Diversity:  0.20,
		Novelty:    0.15,
		Random:     0.10,
	}
}

// Sum returns the total of all weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Sum() float64 {
	return w.Recency + w.Popularity + w.Diversity + w.Novelty + w.Random
}

// Validate checks the weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"recency":    w.Recency,
		"popularity": w.Popularity,
		"diversity":  w.Diversity,
		"novelty":    w.Novelty,
		"random":     w.Random,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weights.%s must be a finite value >= 0, got %v", name, v)
		}
	}
	if w.Random <= 0 {
		return fmt.Errorf("weights.random must be > 0")
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:           DefaultWeights(),
		RecencyHalfLife:   7 * 24 * time.Hour,
		DiversityDecay:    0.7,
		InitialBatchSize:  40,
		WideningBatchSize: 500,
		MaxCandidates:     10000,
		WideningRate:      2,
		Seed:              0,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.RecencyHalfLife <= 0 {
		return fmt.Errorf("recency_half_life must be > 0")
	}
	if c.DiversityDecay <= 0 || c.DiversityDecay > 1 {
		return fmt.Errorf("diversity_decay must be in (0, 1], got %v", c.DiversityDecay)
	}
	if c.InitialBatchSize < 1 {
		return fmt.Errorf("initial_batch_size must be >= 1")
	}
	if c.WideningBatchSize < 1 {
		return fmt.Errorf("widening_batch_size must be >= 1")
	}
	if c.MaxCandidates < c.InitialBatchSize {
		return fmt.Errorf("max_candidates must be >= initial_batch_size")
	}
	if c.WideningRate < 0 {
		return fmt.Errorf("widening_rate must be >= 0")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
