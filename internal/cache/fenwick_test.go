// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package cache

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestWeightTree_PrefixSum(t *testing.T) {
	t.Parallel()

	wt := NewWeightTree([]float64{1, 2, 3, 4, 5})

	tests := []struct {
		index int
		want  float64
	}{
		{-1, 0},
		{0, 1},
		{1, 3},  // 1+2
		{2, 6},  // 1+2+3
		{3, 10}, // 1+2+3+4
		{4, 15}, // 1+2+3+4+5
		{9, 15}, // clamped
	}

	for _, tt := range tests {
		if got := wt.PrefixSum(tt.index); !almostEqual(got, tt.want) {
			t.Errorf("PrefixSum(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestWeightTree_BuildMatchesUpdates(t *testing.T) {
	t.Parallel()

	weights := []float64{0.5, 0, 2.25, 7, 1, 0.125, 3, 9, 4, 0.75, 6}
	built := NewWeightTree(weights)
	incremental := NewWeightTree(make([]float64, len(weights)))
	for i, w := range weights {
		incremental.Update(i, w)
	}

	for i := range weights {
		if !almostEqual(built.PrefixSum(i), incremental.PrefixSum(i)) {
			t.Errorf("PrefixSum(%d): built %v, incremental %v", i, built.PrefixSum(i), incremental.PrefixSum(i))
		}
	}
}

func TestWeightTree_SetAndGet(t *testing.T) {
	t.Parallel()

	wt := NewWeightTree([]float64{1, 1, 1, 1})
	wt.Set(2, 5)
	wt.Set(0, 0)
	wt.Set(3, -4) // clamped to zero

	if got := wt.Get(2); got != 5 {
		t.Errorf("Get(2) = %v, want 5", got)
	}
	if got := wt.Total(); !almostEqual(got, 6) {
		t.Errorf("Total() = %v, want 6", got)
	}
	if got := wt.Get(10); got != 0 {
		t.Errorf("Get(out of range) = %v, want 0", got)
	}
}

func TestWeightTree_NegativeAndNaNWeightsClamp(t *testing.T) {
	t.Parallel()

	wt := NewWeightTree([]float64{-1, math.NaN(), 2})
	if got := wt.Total(); !almostEqual(got, 2) {
		t.Errorf("Total() = %v, want 2", got)
	}
}

func TestWeightTree_Find(t *testing.T) {
	t.Parallel()

	// Cumulative: [1, 1, 4, 10]
	wt := NewWeightTree([]float64{1, 0, 3, 6})

	tests := []struct {
		name   string
		target float64
		want   int
	}{
		{"start of first slot", 0, 0},
		{"inside first slot", 0.99, 0},
		{"boundary skips zero slot", 1, 2},
		{"inside third slot", 3.5, 2},
		{"boundary into last", 4, 3},
		{"inside last", 9.99, 3},
		{"at total", 10, 3},
		{"beyond total", 100, 3},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wt.Find(tt.target); got != tt.want {
				t.Errorf("Find(%v) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestWeightTree_FindAfterRemoval(t *testing.T) {
	t.Parallel()

	wt := NewWeightTree([]float64{2, 2, 2})
	wt.Set(1, 0)

	// Cumulative now [2, 2, 4]; target 2 must land on slot 2, never the removed slot.
	if got := wt.Find(2); got != 2 {
		t.Errorf("Find(2) = %d, want 2", got)
	}

	wt.Set(0, 0)
	wt.Set(2, 0)
	if got := wt.Find(0); got != -1 {
		t.Errorf("Find on all-zero tree = %d, want -1", got)
	}
}

func TestWeightTree_Empty(t *testing.T) {
	t.Parallel()

	wt := NewWeightTree(nil)
	if wt.Size() != 0 {
		t.Errorf("Size() = %d, want 0", wt.Size())
	}
	if got := wt.Total(); got != 0 {
		t.Errorf("Total() = %v, want 0", got)
	}
	if got := wt.Find(0); got != -1 {
		t.Errorf("Find() on empty tree = %d, want -1", got)
	}
}
