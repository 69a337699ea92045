// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package feed ranks content into a personalized "For You" ordering.

# Scoring

Each candidate receives a composite score from five signals:

	score = 0.25*recency + 0.30*popularity + 0.20*diversity + 0.15*novelty + 0.10*random

  - recency: exp(-ln2 * ageDays / halfLifeDays); uploads in the future count as age 0
  - popularity: views / max(maxViewsInSet, 1)
  - diversity: decay^n, n = earlier items from the same channel in input order
  - novelty: 1 if the viewer has not watched the item, else 0
  - random: uniform [0, 1) jitter so repeat visits differ

Weights are configurable but must sum to 1 with a positive random term.

# Sampling

Scores are not sorted. Sampler.Sample draws a permutation by weighted sampling
without replacement, backed by cache.WeightTree for O(log n) draws. Higher
scores tend to surface earlier but never deterministically. When every
remaining score is zero the rest of the pool is drawn uniformly.

# Assembly

Assembler moves through Cold, InitialRanked, Widening and Complete. The first
batch (40 items by default) is ranked synchronously for first paint. Widening
then fetches 500-item batches in the background, rate limited by
golang.org/x/time/rate, merges them by ID and re-ranks the entire candidate
set after each batch. Reset bumps the generation so that in-flight work is
discarded.

# Thread Safety

Scorer, Sampler and Assembler are safe for concurrent use when built with the
RandomSource returned by NewRandom.
*/
package feed
