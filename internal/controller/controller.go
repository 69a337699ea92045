// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/naatfeed/internal/feed"
	"github.com/tomtom215/naatfeed/internal/metrics"
	"github.com/tomtom215/naatfeed/internal/models"
	"github.com/tomtom215/naatfeed/internal/session"
)

// State is a point-in-time snapshot of the current partition.
type State struct {
	Filter         models.FeedFilter
	Items          []models.ContentItem
	Offset         int
	HasMore        bool
	Loading        bool
	Err            error
	AssemblerState string
}

// Option configures a Controller.
type Option func(*Controller)

// WithKeyPrefix namespaces the controller's session cache keys.
func WithKeyPrefix(prefix string) Option {
	return func(c *Controller) { c.keyPrefix = prefix }
}

// WithAssemblerOptions passes options to every assembler the controller creates.
func WithAssemblerOptions(opts ...feed.AssemblerOption) Option {
	return func(c *Controller) { c.asmOpts = append(c.asmOpts, opts...) }
}

// Controller pages through one viewer's feed. Each (channel, sort) filter key
// owns an independent partition holding its loaded pages, personalized
// ordering and assembler. Only the current partition is paged; switching
// filters starts a fresh view of the new key without touching other keys.
type Controller struct {
	cfg       Config
	source    feed.ContentSource
	history   feed.HistorySource
	cache     *session.Cache
	logger    zerolog.Logger
	keyPrefix string
	asmOpts   []feed.AssemblerOption

	mu         sync.Mutex
	current    *partition
	partitions map[string]*partition
	onChange   func(State)
	closed     bool
}

// New creates a controller positioned on filter. No data is loaded until
// the first LoadMore.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, source feed.ContentSource, history feed.HistorySource, cache *session.Cache, filter models.FeedFilter, logger zerolog.Logger, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("content source is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("session cache is required")
	}

	c := &Controller{
		cfg:        cfg,
		source:     source,
		history:    history,
		cache:      cache,
		logger:     logger.With().Str("component", "feed_controller").Logger(),
		partitions: make(map[string]*partition),
	}
	for _, opt := range opts {
		opt(c)
	}

	p, err := c.partitionFor(filter)
	if err != nil {
		return nil, err
	}
	c.current = p
	return c, nil
}

// OnChange registers a callback invoked with a fresh snapshot after every
// state change, including background ordering replacements.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns a snapshot of the current partition.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Filter returns the current filter.
func (c *Controller) Filter() models.FeedFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.filter
}

func (c *Controller) snapshot() State {
	p := c.current
	st := State{
		Filter:  p.filter,
		Items:   p.items[:len(p.items):len(p.items)],
		Offset:  p.offset,
		HasMore: p.hasMore,
		Loading: p.loading,
		Err:     p.err,
	}
	if p.assembler != nil {
		st.AssemblerState = p.assembler.State().String()
	}
	return st
}

// LoadMore loads the next page of the current partition and returns it.
// It returns (nil, nil) without fetching when a load is already in flight for
// the partition or when there is nothing more to load. On failure the
// already loaded items and HasMore are left as they were and the error is
// exposed through State.
func (c *Controller) LoadMore(ctx context.Context) ([]models.ContentItem, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrControllerClosed
	}
	p := c.current
	if p.loading || !p.hasMore {
		c.mu.Unlock()
		return nil, nil
	}
	p.loading = true
	epoch := p.epoch
	c.mu.Unlock()

	c.notify()
	return c.load(ctx, p, epoch)
}

// Refresh discards every cached page and the session ordering of the current
// partition, then loads its first page again. The filter is kept.
func (c *Controller) Refresh(ctx context.Context) ([]models.ContentItem, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrControllerClosed
	}
	p := c.current
	p.resetView()
	p.resetData()
	if p.assembler != nil {
		p.assembler.Reset()
	}
	c.cache.Invalidate(ctx, p.cacheKey)
	p.loading = true
	epoch := p.epoch
	c.mu.Unlock()

	c.logger.Debug().Str("filter", p.filter.Key()).Msg("feed refreshed")
	c.notify()
	return c.load(ctx, p, epoch)
}

// SetFilter switches to filter and loads its first page. The view of the new
// key starts over; its cached pages, and every other key's, are kept. The
// ordering of the key being left is released from memory and read back from
// the session cache on return. Selecting the current filter again is a no-op.
func (c *Controller) SetFilter(ctx context.Context, filter models.FeedFilter) ([]models.ContentItem, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrControllerClosed
	}
	if filter.Key() == c.current.filter.Key() {
		c.mu.Unlock()
		return nil, nil
	}
	p, err := c.partitionFor(filter)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.current.leave()
	c.current = p
	p.resetView()
	p.loading = true
	epoch := p.epoch
	c.mu.Unlock()

	c.notify()
	return c.load(ctx, p, epoch)
}

// Close stops background widening for every partition.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	assemblers := make([]*feed.Assembler, 0, len(c.partitions))
	for _, p := range c.partitions {
		if p.assembler != nil {
			assemblers = append(assemblers, p.assembler)
		}
	}
	c.mu.Unlock()

	for _, a := range assemblers {
		a.Close()
	}
}

// partitionFor returns the partition for filter, creating it if needed.
// Caller holds mu.
func (c *Controller) partitionFor(filter models.FeedFilter) (*partition, error) {
	filter = filter.Normalized()
	key := filter.Key()
	if p, ok := c.partitions[key]; ok {
		return p, nil
	}

	p := newPartition(filter, c.keyPrefix+key)
	if filter.Sort.Personalized() {
		a, err := feed.NewAssembler(c.cfg.Feed, c.source, c.history, filter.Channel(), c.logger, c.asmOpts...)
		if err != nil {
			return nil, fmt.Errorf("create assembler: %w", err)
		}
		a.OnReplace(func(ord feed.Ordering) { c.applyReplacement(key, ord) })
		p.assembler = a
	}
	c.partitions[key] = p
	return p, nil
}

// load fetches the next page for p and applies it if epoch is still current.
func (c *Controller) load(ctx context.Context, p *partition, epoch uint64) ([]models.ContentItem, error) {
	var (
		page    []models.ContentItem
		hasMore bool
		err     error
	)
	if p.filter.Sort.Personalized() {
		page, hasMore, err = c.loadPersonalized(ctx, p, epoch)
	} else {
		page, hasMore, err = c.loadRepository(ctx, p, epoch)
	}

	c.mu.Lock()
	if p.epoch != epoch || c.closed {
		c.mu.Unlock()
		return nil, nil
	}
	p.loading = false
	if err != nil {
		p.err = err
		c.mu.Unlock()

		metrics.RecordLoadError(p.filter.Sort.String())
		c.logger.Warn().Err(err).Str("filter", p.filter.Key()).Msg("failed to load feed page")
		c.notify()
		return nil, err
	}
	p.err = nil
	p.appendPage(page)
	p.hasMore = hasMore
	c.mu.Unlock()

	c.notify()
	return page, nil
}

// loadRepository serves non-personalized sorts straight from the repository,
// reusing pages already fetched for the same offset.
func (c *Controller) loadRepository(ctx context.Context, p *partition, epoch uint64) ([]models.ContentItem, bool, error) {
	c.mu.Lock()
	offset := p.offset
	cached, ok := p.pages[offset]
	c.mu.Unlock()

	sort := p.filter.Sort.String()
	if ok {
		metrics.RecordPageServed(sort, "cache")
		return cached, len(cached) == c.cfg.PageSize, nil
	}

	items, err := c.source.FetchPage(ctx, feed.PageRequest{
		Limit:     c.cfg.PageSize,
		Offset:    offset,
		Sort:      p.filter.Sort,
		ChannelID: p.filter.Channel(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("fetch page at offset %d: %w", offset, err)
	}

	c.mu.Lock()
	if p.epoch == epoch {
		p.pages[offset] = items
		p.remember(items)
	}
	c.mu.Unlock()

	metrics.RecordPageServed(sort, "repository")
	return items, len(items) == c.cfg.PageSize, nil
}

// loadPersonalized slices the next page from the partition's ordering,
// resolving the ordering first when the view starts over.
func (c *Controller) loadPersonalized(ctx context.Context, p *partition, epoch uint64) ([]models.ContentItem, bool, error) {
	c.mu.Lock()
	needOrdering := p.ordering == nil || p.offset == 0
	c.mu.Unlock()

	if needOrdering {
		if err := c.resolveOrdering(ctx, p, epoch); err != nil {
			return nil, false, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	page := p.nextFromOrdering(c.cfg.PageSize)
	hasMore := p.remaining() > len(page) || p.widening()
	metrics.RecordPageServed(p.filter.Sort.String(), "ordering")
	return page, hasMore, nil
}

// resolveOrdering makes p.ordering valid for a new view. A live session cache
// entry is reused when at least ReuseThreshold of its items are already in the
// partition's page store; otherwise the assembler recomputes the ordering from
// scratch.
func (c *Controller) resolveOrdering(ctx context.Context, p *partition, epoch uint64) error {
	entry, cached := c.cache.Retrieve(ctx, p.cacheKey)

	c.mu.Lock()
	if cached {
		if p.ordering != nil && entry.Generation == p.orderingGen {
			c.mu.Unlock()
			return nil
		}
		if cov := p.coverage(entry.Items); cov >= c.cfg.ReuseThreshold {
			if p.epoch != epoch {
				c.mu.Unlock()
				return nil
			}
			asm := p.assembler
			p.ordering = entry.Items
			p.orderingGen = entry.Generation
			// Widening keeps feeding the view only when the entry came from
			// this partition's live assembler run.
			p.fromAssembler = asm != nil && asm.State() != feed.StateCold && asm.Generation() == entry.Generation
			p.remember(entry.Items)
			c.mu.Unlock()

			metrics.RecordSessionCacheLookup("reused")
			c.logger.Debug().
				Str("filter", p.filter.Key()).
				Float64("coverage", cov).
				Msg("reusing cached ordering")
			return nil
		}
	}
	asm := p.assembler
	c.mu.Unlock()

	if asm.State() != feed.StateCold {
		asm.Reset()
	}
	ord, err := asm.Start(ctx)
	if err != nil {
		return fmt.Errorf("assemble ordering: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p.epoch != epoch {
		return nil
	}
	// Widening may already have replaced the ordering Start returned.
	if latest := asm.Ordering(); latest.Generation == ord.Generation && len(latest.Items) >= len(ord.Items) {
		ord = latest
	}
	p.ordering = ord.Items
	p.orderingGen = ord.Generation
	p.fromAssembler = true
	p.remember(ord.Items)
	if err := c.cache.Store(ctx, p.cacheKey, ord.Items, ord.Generation); err != nil {
		c.logger.Warn().Err(err).Str("filter", p.filter.Key()).Msg("failed to cache ordering")
	}
	return nil
}

// applyReplacement adopts an ordering published by background widening.
func (c *Controller) applyReplacement(key string, ord feed.Ordering) {
	c.mu.Lock()
	p, ok := c.partitions[key]
	if c.closed || !ok || !p.fromAssembler || p.orderingGen != ord.Generation ||
		p.assembler.Generation() != ord.Generation {
		c.mu.Unlock()
		return
	}
	p.remember(ord.Items)
	isCurrent := c.current == p
	if isCurrent {
		p.ordering = ord.Items
		if p.err == nil && !p.loading && p.offset > 0 {
			p.hasMore = p.remaining() > 0 || p.widening()
		}
	}
	if err := c.cache.Store(context.Background(), p.cacheKey, ord.Items, ord.Generation); err != nil {
		c.logger.Warn().Err(err).Str("filter", key).Msg("failed to cache widened ordering")
	}
	c.mu.Unlock()

	if isCurrent {
		c.notify()
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	var st State
	if fn != nil {
		st = c.snapshot()
	}
	c.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// ErrCodeFetch is the APIError code reported when the content repository
// failed while loading the current partition.
const ErrCodeFetch = "FETCH_ERROR"

// Page converts the snapshot to its API representation. Items is never nil.
func (st State) Page(sessionID string) models.FeedPage {
	page := models.FeedPage{
		SessionID: sessionID,
		Filter:    st.Filter,
		Items:     st.Items,
		Offset:    st.Offset,
		HasMore:   st.HasMore,
		Loading:   st.Loading,
	}
	if page.Items == nil {
		page.Items = []models.ContentItem{}
	}
	if st.Err != nil {
		page.Error = &models.APIError{Code: ErrCodeFetch, Message: st.Err.Error()}
	}
	return page
}
