// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/naatfeed/internal/models"
)

func scoredItems(scores ...float64) []ScoredItem {
	items := make([]ScoredItem, len(scores))
	for i, s := range scores {
		items[i] = ScoredItem{
			Item:  models.ContentItem{ID: fmt.Sprintf("item-%d", i)},
			Score: s,
		}
	}
	return items
}

type sampleFunc func(*Sampler, []ScoredItem) []ScoredItem

var samplers = map[string]sampleFunc{
	"fenwick": (*Sampler).Sample,
	"naive":   (*Sampler).SampleNaive,
}

func TestSamplerReturnsPermutation(t *testing.T) {
	inputs := map[string][]float64{
		"positive":   {0.3, 0.9, 0.1, 0.5, 0.7},
		"with zeros": {0, 0.4, 0, 0.2, 0},
		"all zero":   {0, 0, 0, 0},
		"single":     {0.5},
		"negative":   {-1, 0.5, math.NaN()},
	}

	for sname, sample := range samplers {
		for iname, scores := range inputs {
			t.Run(sname+"/"+iname, func(t *testing.T) {
				s := NewSampler(NewRandom(1))
				in := scoredItems(scores...)
				out := sample(s, in)

				if len(out) != len(in) {
					t.Fatalf("len(out) = %d, want %d", len(out), len(in))
				}
				seen := make(map[string]bool)
				for _, it := range out {
					if seen[it.Item.ID] {
						t.Fatalf("duplicate %s in output", it.Item.ID)
					}
					seen[it.Item.ID] = true
				}
			})
		}
	}
}

func TestSamplerEmpty(t *testing.T) {
	s := NewSampler(NewRandom(1))
	if out := s.Sample(nil); len(out) != 0 {
		t.Errorf("Sample(nil) returned %d items", len(out))
	}
	if out := s.SampleNaive(nil); len(out) != 0 {
		t.Errorf("SampleNaive(nil) returned %d items", len(out))
	}
}

// TestSamplerFirstPickFrequency draws scores [1, 10, 100] 1000 times.
// The 100 item should lead roughly 90% of the time, the 1 item roughly 1%.
func TestSamplerFirstPickFrequency(t *testing.T) {
	for name, sample := range samplers {
		t.Run(name, func(t *testing.T) {
			s := NewSampler(NewRandom(42))
			in := scoredItems(1, 10, 100)
			first := make(map[string]int)
			for i := 0; i < 1000; i++ {
				first[sample(s, in)[0].Item.ID]++
			}

			if first["item-2"] <= 850 {
				t.Errorf("score 100 led %d/1000 times, want > 850", first["item-2"])
			}
			if first["item-0"] >= 40 {
				t.Errorf("score 1 led %d/1000 times, want < 40", first["item-0"])
			}
			if first["item-2"] <= first["item-1"] || first["item-1"] <= first["item-0"] {
				t.Errorf("first-pick counts not ordered by score: %v", first)
			}
		})
	}
}

func TestSamplerHigherScoresRankEarlierOnAverage(t *testing.T) {
	s := NewSampler(NewRandom(99))
	in := scoredItems(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	const trials = 2000

	posSum := make([]float64, len(in))
	for i := 0; i < trials; i++ {
		for pos, it := range s.Sample(in) {
			var idx int
			fmt.Sscanf(it.Item.ID, "item-%d", &idx)
			posSum[idx] += float64(pos)
		}
	}

	avg := func(idx int) float64 { return posSum[idx] / trials }
	if !(avg(9) < avg(4) && avg(4) < avg(0)) {
		t.Errorf("average positions not decreasing with score: score10=%.2f score5=%.2f score1=%.2f",
			avg(9), avg(4), avg(0))
	}
}

func TestSamplerZeroPoolIsUniform(t *testing.T) {
	for name, sample := range samplers {
		t.Run(name, func(t *testing.T) {
			s := NewSampler(NewRandom(5))
			in := scoredItems(0, 0, 0)
			first := make(map[string]int)
			for i := 0; i < 3000; i++ {
				first[sample(s, in)[0].Item.ID]++
			}
			for id, n := range first {
				if n < 800 || n > 1200 {
					t.Errorf("%s led %d/3000 times, want about 1000", id, n)
				}
			}
			if len(first) != 3 {
				t.Errorf("only %d distinct leaders, want 3", len(first))
			}
		})
	}
}

func TestSamplerPositiveScoresPrecedeZeroScores(t *testing.T) {
	for name, sample := range samplers {
		t.Run(name, func(t *testing.T) {
			s := NewSampler(NewRandom(11))
			in := scoredItems(0, 0.5, 0, 0.01, 0)
			for i := 0; i < 200; i++ {
				out := sample(s, in)
				for pos := 2; pos < len(out); pos++ {
					if out[pos].Score > 0 {
						t.Fatalf("positive score at position %d: %v", pos, out)
					}
				}
			}
		})
	}
}

func TestSamplerMatchesNaiveDistribution(t *testing.T) {
	in := scoredItems(0.05, 0.2, 0.35, 0.4)
	const trials = 4000

	leadShare := func(sample sampleFunc) float64 {
		s := NewSampler(NewRandom(2024))
		n := 0
		for i := 0; i < trials; i++ {
			if sample(s, in)[0].Item.ID == "item-3" {
				n++
			}
		}
		return float64(n) / trials
	}

	fast, naive := leadShare((*Sampler).Sample), leadShare((*Sampler).SampleNaive)
	if math.Abs(fast-naive) > 0.05 {
		t.Errorf("lead share differs: fenwick=%.3f naive=%.3f", fast, naive)
	}
	if math.Abs(fast-0.4) > 0.05 {
		t.Errorf("fenwick lead share = %.3f, want about 0.4", fast)
	}
}

// TestUnwatchedRanksEarlier checks that, all else equal, an unwatched item
// tends to be placed before a watched one.
func TestUnwatchedRanksEarlier(t *testing.T) {
	rnd := NewRandom(3)
	scorer := NewScorer(DefaultConfig(), rnd, func() time.Time { return testNow })
	sampler := NewSampler(rnd)

	items := []models.ContentItem{
		{ID: "watched", ChannelID: "ch-a", UploadedAt: testNow, Views: 500},
		{ID: "fresh", ChannelID: "ch-b", UploadedAt: testNow, Views: 500},
	}
	watched := map[string]struct{}{"watched": {}}

	freshFirst := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		if sampler.Sample(scorer.ScoreAll(items, watched))[0].Item.ID == "fresh" {
			freshFirst++
		}
	}
	if freshFirst <= trials/2 {
		t.Errorf("unwatched item led %d/%d times, want a majority", freshFirst, trials)
	}
}

func BenchmarkSample(b *testing.B) {
	for _, n := range []int{40, 500, 5000} {
		in := make([]ScoredItem, n)
		for i := range in {
			in[i] = ScoredItem{Item: models.ContentItem{ID: fmt.Sprint(i)}, Score: float64(i%97) / 97}
		}
		b.Run(fmt.Sprintf("fenwick/%d", n), func(b *testing.B) {
			s := NewSampler(NewRandom(1))
			for i := 0; i < b.N; i++ {
				s.Sample(in)
			}
		})
		if n <= 500 {
			b.Run(fmt.Sprintf("naive/%d", n), func(b *testing.B) {
				s := NewSampler(NewRandom(1))
				for i := 0; i < b.N; i++ {
					s.SampleNaive(in)
				}
			})
		}
	}
}
