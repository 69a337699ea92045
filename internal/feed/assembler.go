// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/naatfeed/internal/metrics"
	"github.com/tomtom215/naatfeed/internal/models"
)

// AssemblerOption configures an Assembler.
type AssemblerOption func(*assemblerOptions)

type assemblerOptions struct {
	rnd RandomSource
	now func() time.Time
}

// WithRandom sets the random source shared by scoring and sampling.
func WithRandom(rnd RandomSource) AssemblerOption {
	return func(o *assemblerOptions) { o.rnd = rnd }
}

// WithClock sets the clock used for recency scoring.
func WithClock(now func() time.Time) AssemblerOption {
	return func(o *assemblerOptions) { o.now = now }
}

// Assembler builds the personalized ordering for one filter partition.
//
// Start ranks a small initial batch so the first page renders quickly, then a
// background goroutine widens the candidate set in larger batches, re-ranking
// the full accumulated set after each merge and atomically replacing the
// ordering. Every run carries a generation number; Reset bumps it, which
// cancels the widening goroutine and causes any in-flight result to be dropped.
type Assembler struct {
	cfg     *Config
	source  ContentSource
	history HistorySource
	scorer  *Scorer
	sampler *Sampler
	limiter *rate.Limiter
	channel string
	logger  zerolog.Logger

	mu         sync.RWMutex
	state      State
	generation uint64
	candidates []models.ContentItem
	seen       map[string]struct{}
	ordering   Ordering
	cancelRun  context.CancelFunc
	onReplace  func(Ordering)
	closed     bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

// NewAssembler creates an assembler for the given channel ("" or models.AllChannels
// for every channel). history may be nil, in which case every item is novel.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAssembler(cfg *Config, source ContentSource, history HistorySource, channel string, logger zerolog.Logger, opts ...AssemblerOption) (*Assembler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feed config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("content source is required")
	}

	o := assemblerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = NewRandom(cfg.Seed)
	}

	limit := rate.Inf
	if cfg.WideningRate > 0 {
		limit = rate.Limit(cfg.WideningRate)
	}
	if channel == models.AllChannels {
		channel = ""
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &Assembler{
		cfg:        cfg.Clone(),
		source:     source,
		history:    history,
		scorer:     NewScorer(cfg, o.rnd, o.now),
		sampler:    NewSampler(o.rnd),
		limiter:    rate.NewLimiter(limit, 1),
		channel:    channel,
		logger:     logger.With().Str("component", "feed_assembler").Str("channel", channelLabel(channel)).Logger(),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}, nil
}

// OnReplace registers a callback invoked after widening publishes a new ordering.
// The callback runs on the widening goroutine without assembler locks held, and
// may observe an ordering that a concurrent Reset has already superseded;
// compare Ordering.Generation against Generation to detect that.
func (a *Assembler) OnReplace(fn func(Ordering)) {
	a.mu.Lock()
	a.onReplace = fn
	a.mu.Unlock()
}

// Start ranks the initial batch and begins background widening.
// Calling Start on an assembler that already has an ordering returns it.
func (a *Assembler) Start(ctx context.Context) (Ordering, error) {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return Ordering{}, ErrAssemblerClosed
	}
	if a.state != StateCold {
		ord := a.ordering
		a.mu.RUnlock()
		return ord, nil
	}
	gen := a.generation
	a.mu.RUnlock()

	batch, err := a.source.FetchPage(ctx, a.pageRequest(a.cfg.InitialBatchSize, 0))
	if err != nil {
		return Ordering{}, fmt.Errorf("fetch initial batch: %w", err)
	}
	watched := a.watchedIDs(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return Ordering{}, ErrAssemblerClosed
	case a.generation != gen:
		return Ordering{}, ErrAssemblerReset
	case a.state != StateCold:
		// A concurrent Start won the race.
		return a.ordering, nil
	}

	a.seen = make(map[string]struct{}, len(batch))
	a.candidates = a.merge(nil, batch)
	a.ordering = Ordering{
		Items:      a.rank("initial", a.candidates, watched),
		Generation: gen,
		Batches:    1,
	}
	a.state = StateInitialRanked

	if len(batch) < a.cfg.InitialBatchSize || len(a.candidates) >= a.cfg.MaxCandidates {
		a.state = StateComplete
	} else {
		runCtx, cancel := context.WithCancel(a.baseCtx)
		a.cancelRun = cancel
		a.wg.Add(1)
		go a.widen(runCtx, gen, len(batch))
	}

	a.logger.Debug().
		Uint64("generation", gen).
		Int("candidates", len(a.candidates)).
		Str("state", a.state.String()).
		Msg("initial ordering ranked")

	return a.ordering, nil
}

// widen fetches successive batches until the repository is exhausted, an
// error occurs, the candidate cap is reached, or the run is cancelled.
func (a *Assembler) widen(ctx context.Context, gen uint64, offset int) {
	defer a.wg.Done()

	batches := 1
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return
		}
		if !a.transition(gen, StateWidening) {
			return
		}

		batch, err := a.source.FetchPage(ctx, a.pageRequest(a.cfg.WideningBatchSize, offset))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.RecordWideningBatch("error")
			a.logger.Warn().
				Err(err).
				Int("offset", offset).
				Uint64("generation", gen).
				Msg("widening batch failed, keeping current ordering")
			a.transition(gen, StateComplete)
			return
		}
		offset += len(batch)
		batches++
		exhausted := len(batch) < a.cfg.WideningBatchSize

		a.mu.Lock()
		if a.generation != gen {
			a.mu.Unlock()
			metrics.RecordWideningBatch("stale")
			return
		}
		before := len(a.candidates)
		a.candidates = a.merge(a.candidates, batch)
		candidates := a.candidates
		if len(candidates) >= a.cfg.MaxCandidates {
			exhausted = true
		}
		a.mu.Unlock()

		if len(candidates) > before {
			a.replace(ctx, gen, candidates, batches, exhausted)
		} else if exhausted {
			a.transition(gen, StateComplete)
		}

		if exhausted {
			a.logger.Debug().
				Uint64("generation", gen).
				Int("candidates", len(candidates)).
				Int("batches", batches).
				Msg("widening complete")
			return
		}
	}
}

// replace re-ranks the full candidate set and publishes the result unless the
// generation has moved on.
func (a *Assembler) replace(ctx context.Context, gen uint64, candidates []models.ContentItem, batches int, exhausted bool) {
	items := a.rank("widening", candidates, a.watchedIDs(ctx))

	a.mu.Lock()
	if a.generation != gen {
		a.mu.Unlock()
		metrics.RecordWideningBatch("stale")
		return
	}
	a.ordering = Ordering{Items: items, Generation: gen, Batches: batches}
	if exhausted {
		a.state = StateComplete
	}
	ord := a.ordering
	cb := a.onReplace
	a.mu.Unlock()

	metrics.RecordWideningBatch("merged")
	if cb != nil {
		cb(ord)
	}
}

// transition sets the state if gen is still current.
func (a *Assembler) transition(gen uint64, s State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != gen || a.closed {
		return false
	}
	a.state = s
	return true
}

// rank scores and samples candidates into a new ordering.
func (a *Assembler) rank(phase string, candidates []models.ContentItem, watched map[string]struct{}) []models.ContentItem {
	start := time.Now()
	sampled := a.sampler.Sample(a.scorer.ScoreAll(candidates, watched))
	items := make([]models.ContentItem, len(sampled))
	for i := range sampled {
		items[i] = sampled[i].Item
	}
	metrics.RecordRankPass(phase, len(candidates), time.Since(start))
	return items
}

// merge appends unseen items to dst, respecting MaxCandidates. Caller holds mu.
func (a *Assembler) merge(dst, batch []models.ContentItem) []models.ContentItem {
	for i := range batch {
		if len(dst) >= a.cfg.MaxCandidates {
			break
		}
		if _, ok := a.seen[batch[i].ID]; ok {
			continue
		}
		a.seen[batch[i].ID] = struct{}{}
		dst = append(dst, batch[i])
	}
	return dst
}

// watchedIDs loads the viewer's history. Failures degrade to "nothing watched".
func (a *Assembler) watchedIDs(ctx context.Context) map[string]struct{} {
	if a.history == nil {
		return nil
	}
	ids, err := a.history.WatchedIDs(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to load watch history, scoring without novelty")
		return nil
	}
	return ids
}

func (a *Assembler) pageRequest(limit, offset int) PageRequest {
	return PageRequest{
		Limit:     limit,
		Offset:    offset,
		Sort:      models.SortRecent,
		ChannelID: a.channel,
	}
}

// Reset discards the current ordering and candidates and cancels widening.
// It does not wait for the widening goroutine; results it produces afterwards
// carry a stale generation and are dropped.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	if a.cancelRun != nil {
		a.cancelRun()
		a.cancelRun = nil
	}
	a.state = StateCold
	a.candidates = nil
	a.seen = nil
	a.ordering = Ordering{Generation: a.generation}
}

// Close stops widening and waits for the background goroutine to exit.
// Close must not be called from an OnReplace callback.
func (a *Assembler) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.generation++
	if a.cancelRun != nil {
		a.cancelRun()
		a.cancelRun = nil
	}
	a.baseCancel()
	a.mu.Unlock()

	a.wg.Wait()
}

// Wait blocks until the current widening goroutine, if any, has exited.
func (a *Assembler) Wait() {
	a.wg.Wait()
}

// Ordering returns the current ordering.
func (a *Assembler) Ordering() Ordering {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ordering
}

// State returns the current lifecycle state.
func (a *Assembler) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Generation returns the current generation number.
func (a *Assembler) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}

// CandidateCount returns the number of accumulated candidates.
func (a *Assembler) CandidateCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.candidates)
}

func channelLabel(channel string) string {
	if channel == "" {
		return models.AllChannels
	}
	return channel
}
