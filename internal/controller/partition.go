// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package controller

import (
	"github.com/tomtom215/naatfeed/internal/feed"
	"github.com/tomtom215/naatfeed/internal/models"
)

// partition is the cached state for one filter key. All fields are guarded by
// the owning Controller's mutex.
type partition struct {
	filter   models.FeedFilter
	cacheKey string

	// View state. Cleared when the filter is re-selected or refreshed.
	items     []models.ContentItem
	delivered map[string]struct{}
	offset    int
	hasMore   bool
	loading   bool
	err       error
	epoch     uint64

	// Data caches. Cleared only by refresh. The ordering itself is released
	// when the view leaves the key; the session cache keeps it until the TTL.
	pages         map[int][]models.ContentItem // repository pages by offset
	pool          map[string]struct{}          // every item ID the repository returned for this key
	ordering      []models.ContentItem
	orderingGen   uint64
	fromAssembler bool

	assembler *feed.Assembler // nil for non-personalized sorts
}

func newPartition(filter models.FeedFilter, cacheKey string) *partition {
	p := &partition{filter: filter, cacheKey: cacheKey}
	p.resetView()
	p.resetData()
	return p
}

// resetView starts a fresh view. Loads issued under the previous epoch are dropped.
func (p *partition) resetView() {
	p.epoch++
	p.items = nil
	p.delivered = make(map[string]struct{})
	p.offset = 0
	p.hasMore = true
	p.loading = false
	p.err = nil
}

func (p *partition) resetData() {
	p.pages = make(map[int][]models.ContentItem)
	p.pool = make(map[string]struct{})
	p.ordering = nil
	p.orderingGen = 0
	p.fromAssembler = false
}

// leave ends the current view and releases the in-memory ordering. Loads
// still in flight for the view are dropped. The page store is kept.
func (p *partition) leave() {
	p.resetView()
	p.ordering = nil
}

func (p *partition) remember(items []models.ContentItem) {
	for i := range items {
		p.pool[items[i].ID] = struct{}{}
	}
}

// coverage returns the fraction of items already present in the pool.
func (p *partition) coverage(items []models.ContentItem) float64 {
	if len(items) == 0 {
		return 1
	}
	known := 0
	for i := range items {
		if _, ok := p.pool[items[i].ID]; ok {
			known++
		}
	}
	return float64(known) / float64(len(items))
}

// nextFromOrdering returns up to n undelivered items in ordering order.
func (p *partition) nextFromOrdering(n int) []models.ContentItem {
	page := make([]models.ContentItem, 0, n)
	for i := range p.ordering {
		if len(page) == n {
			break
		}
		if _, ok := p.delivered[p.ordering[i].ID]; ok {
			continue
		}
		page = append(page, p.ordering[i])
	}
	return page
}

// remaining counts undelivered items in the ordering.
func (p *partition) remaining() int {
	n := 0
	for i := range p.ordering {
		if _, ok := p.delivered[p.ordering[i].ID]; !ok {
			n++
		}
	}
	return n
}

func (p *partition) appendPage(page []models.ContentItem) {
	for i := range page {
		if _, ok := p.delivered[page[i].ID]; ok {
			continue
		}
		p.delivered[page[i].ID] = struct{}{}
		p.items = append(p.items, page[i])
	}
	p.offset += len(page)
}

// widening reports whether the assembler may still grow the ordering.
func (p *partition) widening() bool {
	if p.assembler == nil || !p.fromAssembler {
		return false
	}
	switch p.assembler.State() {
	case feed.StateInitialRanked, feed.StateWidening:
		return true
	default:
		return false
	}
}
