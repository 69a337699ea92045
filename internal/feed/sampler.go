// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"github.com/tomtom215/naatfeed/internal/cache"
)

// Sampler produces a permutation of scored items by repeated weighted draws
// without replacement. The probability of an item being drawn next is its
// score divided by the sum of the remaining scores.
type Sampler struct {
	rnd RandomSource
}

// NewSampler creates a sampler. A nil source is seeded from the clock.
func NewSampler(rnd RandomSource) *Sampler {
	if rnd == nil {
		rnd = NewRandom(0)
	}
	return &Sampler{rnd: rnd}
}

// Sample returns a weighted random permutation of items in O(n log n).
// Once every remaining score is zero the rest are drawn uniformly.
func (s *Sampler) Sample(items []ScoredItem) []ScoredItem {
	n := len(items)
	out := make([]ScoredItem, 0, n)
	if n == 0 {
		return out
	}

	weights := make([]float64, n)
	for i := range items {
		weights[i] = items[i].Score
	}
	// NewWeightTree clamps negative and NaN scores to zero.
	tree := cache.NewWeightTree(weights)
	positive := 0
	for i := 0; i < n; i++ {
		if tree.Get(i) > 0 {
			positive++
		}
	}

	taken := make([]bool, n)
	for positive > 0 {
		idx := tree.Find(s.rnd.Float64() * tree.Total())
		if idx < 0 {
			break
		}
		out = append(out, items[idx])
		taken[idx] = true
		tree.Set(idx, 0)
		positive--
	}

	if len(out) == n {
		return out
	}

	rest := make([]int, 0, n-len(out))
	for i := 0; i < n; i++ {
		if !taken[i] {
			rest = append(rest, i)
		}
	}
	s.shuffle(rest)
	for _, i := range rest {
		out = append(out, items[i])
	}
	return out
}

// SampleNaive is the O(n^2) reference implementation of Sample. It rescans
// the remaining pool for every draw.
func (s *Sampler) SampleNaive(items []ScoredItem) []ScoredItem {
	pool := make([]ScoredItem, len(items))
	copy(pool, items)
	out := make([]ScoredItem, 0, len(items))

	for len(pool) > 0 {
		total := 0.0
		for i := range pool {
			if pool[i].Score > 0 {
				total += pool[i].Score
			}
		}

		pick := len(pool) - 1
		if total <= 0 {
			pick = int(s.rnd.Float64() * float64(len(pool)))
			if pick >= len(pool) {
				pick = len(pool) - 1
			}
		} else {
			target := s.rnd.Float64() * total
			acc := 0.0
			for i := range pool {
				if pool[i].Score <= 0 {
					continue
				}
				acc += pool[i].Score
				pick = i
				if target < acc {
					break
				}
			}
		}

		out = append(out, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out
}

// shuffle is a Fisher-Yates shuffle driven by the sampler's source.
func (s *Sampler) shuffle(idx []int) {
	for i := len(idx) - 1; i > 0; i-- {
		j := int(s.rnd.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		idx[i], idx[j] = idx[j], idx[i]
	}
}
