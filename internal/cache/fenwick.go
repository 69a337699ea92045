// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package cache

// WeightTree is a Fenwick tree (Binary Indexed Tree) over float64 weights.
// Besides prefix sums it supports Find, which locates the slot holding a given
// cumulative weight. That makes it the backing structure for weighted sampling
// without replacement:
//   - Draw: u := rand.Float64() * Total(); i := Find(u)
//   - Remove: Set(i, 0)
//
// Time Complexity:
//   - Update / Set / PrefixSum / Find: O(log n)
//   - Build from a slice: O(n)
//
// WeightTree is not safe for concurrent use; callers own one per sampling pass.
type WeightTree struct {
	tree   []float64 // 1-indexed for cleaner bit manipulation
	values []float64 // raw per-slot weights, 0-indexed
	n      int
	mask   int // highest power of two <= n, used by Find
}

// NewWeightTree builds a tree holding weights in O(n).
// Negative weights are stored as zero.
func NewWeightTree(weights []float64) *WeightTree {
	n := len(weights)
	wt := &WeightTree{
		tree:   make([]float64, n+1),
		values: make([]float64, n),
		n:      n,
	}
	for i, w := range weights {
		if w < 0 || w != w { // negative or NaN
			w = 0
		}
		wt.values[i] = w
		wt.tree[i+1] += w
		if parent := (i + 1) + ((i + 1) & -(i + 1)); parent <= n {
			wt.tree[parent] += wt.tree[i+1]
		}
	}
	wt.mask = 1
	for wt.mask<<1 <= n {
		wt.mask <<= 1
	}
	return wt
}

// Update adds delta to the weight at index i (0-indexed).
func (wt *WeightTree) Update(i int, delta float64) {
	if i < 0 || i >= wt.n {
		return
	}
	wt.values[i] += delta
	i++ // Convert to 1-indexed
	for i <= wt.n {
		wt.tree[i] += delta
		i += i & (-i) // Add last set bit
	}
}

// Set replaces the weight at index i (0-indexed).
func (wt *WeightTree) Set(i int, w float64) {
	if i < 0 || i >= wt.n {
		return
	}
	if w < 0 || w != w {
		w = 0
	}
	wt.Update(i, w-wt.values[i])
}

// Get returns the weight at index i (0-indexed).
func (wt *WeightTree) Get(i int) float64 {
	if i < 0 || i >= wt.n {
		return 0
	}
	return wt.values[i]
}

// PrefixSum returns the sum of weights from index 0 to i (inclusive, 0-indexed).
func (wt *WeightTree) PrefixSum(i int) float64 {
	if i < 0 {
		return 0
	}
	if i >= wt.n {
		i = wt.n - 1
	}

	i++ // Convert to 1-indexed
	var sum float64
	for i > 0 {
		sum += wt.tree[i]
		i -= i & (-i) // Remove last set bit
	}
	return sum
}

// Total returns the sum of all weights.
func (wt *WeightTree) Total() float64 {
	return wt.PrefixSum(wt.n - 1)
}

// Size returns the number of slots.
func (wt *WeightTree) Size() int {
	return wt.n
}

// Find returns the smallest index i whose PrefixSum(i) exceeds target, skipping
// zero-weight slots. Targets at or beyond Total() resolve to the last slot with
// positive weight, which absorbs floating point drift. Returns -1 if every
// weight is zero.
func (wt *WeightTree) Find(target float64) int {
	if wt.n == 0 {
		return -1
	}

	pos := 0
	remaining := target
	for step := wt.mask; step > 0; step >>= 1 {
		next := pos + step
		if next <= wt.n && wt.tree[next] <= remaining {
			pos = next
			remaining -= wt.tree[next]
		}
	}

	// pos is the count of slots whose cumulative weight is <= target.
	if pos < wt.n && wt.values[pos] > 0 {
		return pos
	}
	for i := pos; i < wt.n; i++ {
		if wt.values[i] > 0 {
			return i
		}
	}
	for i := wt.n - 1; i >= 0; i-- {
		if wt.values[i] > 0 {
			return i
		}
	}
	return -1
}
