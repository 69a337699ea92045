// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"math"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.InitialBatchSize != 40 {
		t.Errorf("InitialBatchSize = %d, want 40", cfg.InitialBatchSize)
	}
	if cfg.WideningBatchSize != 500 {
		t.Errorf("WideningBatchSize = %d, want 500", cfg.WideningBatchSize)
	}
	if cfg.DiversityDecay != 0.7 {
		t.Errorf("DiversityDecay = %v, want 0.7", cfg.DiversityDecay)
	}
	if math.Abs(cfg.Weights.Sum()-1) > 1e-9 {
		t.Errorf("default weights sum = %v, want 1", cfg.Weights.Sum())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"weights do not sum to one", func(c *Config) { c.Weights.Recency = 0.5 }, true},
		{"zero random weight", func(c *Config) {
			c.Weights.Recency += c.Weights.Random
			c.Weights.Random = 0
		}, true},
		{"negative weight", func(c *Config) {
			c.Weights.Popularity = -0.1
			c.Weights.Recency = 0.65
		}, true},
		{"NaN weight", func(c *Config) { c.Weights.Novelty = math.NaN() }, true},
		{"rebalanced weights", func(c *Config) {
			c.Weights = Weights{Recency: 0.4, Popularity: 0.2, Diversity: 0.2, Novelty: 0.1, Random: 0.1}
		}, false},
		{"zero half life", func(c *Config) { c.RecencyHalfLife = 0 }, true},
		{"decay above one", func(c *Config) { c.DiversityDecay = 1.5 }, true},
		{"decay zero", func(c *Config) { c.DiversityDecay = 0 }, true},
		{"decay one", func(c *Config) { c.DiversityDecay = 1 }, false},
		{"zero initial batch", func(c *Config) { c.InitialBatchSize = 0 }, true},
		{"zero widening batch", func(c *Config) { c.WideningBatchSize = 0 }, true},
		{"cap below initial batch", func(c *Config) { c.MaxCandidates = 10 }, true},
		{"negative widening rate", func(c *Config) { c.WideningRate = -1 }, true},
		{"unlimited widening rate", func(c *Config) { c.WideningRate = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.Random = 0.5
	clone.RecencyHalfLife = time.Hour

	if cfg.Weights.Random != 0.10 {
		t.Error("modifying clone weights changed original")
	}
	if cfg.RecencyHalfLife != 7*24*time.Hour {
		t.Error("modifying clone half life changed original")
	}
}
