// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/naatfeed/internal/metrics"
)

// ErrSubscriptionClosed is returned by RunWithContext when the router stops
// because the bus closed the subscription before the context was canceled.
var ErrSubscriptionClosed = errors.New("event subscription closed")

// watchHandlerName names the router handler in watermill logs.
const watchHandlerName = "watch-recorder"

// WatchRecorder persists watch events. Satisfied by *database.DB.
type WatchRecorder interface {
	RecordWatch(ctx context.Context, itemID string, watchedAt time.Time) error
}

// ConsumerConfig configures a WatchConsumer.
type ConsumerConfig struct {
	// MaxAttempts is how many times a failing write is tried before the
	// event is dropped.
	MaxAttempts int

	// RetryDelay is the first backoff between attempts; it doubles per
	// attempt up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	// CloseTimeout bounds how long shutdown waits for in-flight events.
	CloseTimeout time.Duration
}

// DefaultConsumerConfig returns the default consumer settings.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		MaxAttempts:   3,
		RetryDelay:    50 * time.Millisecond,
		MaxRetryDelay: 2 * time.Second,
		CloseTimeout:  10 * time.Second,
	}
}

// ConsumerOption configures a WatchConsumer.
type ConsumerOption func(*WatchConsumer)

// WithPoisonQueue forwards events that exhaust their attempts to
// TopicWatchDropped on pub instead of discarding them.
func WithPoisonQueue(pub message.Publisher) ConsumerOption {
	return func(c *WatchConsumer) { c.poison = pub }
}

// WatchConsumer moves watch events from the bus into the watch-history store.
// Events are handled by a watermill Router with retry and panic recovery
// middleware.
type WatchConsumer struct {
	subscriber message.Subscriber
	recorder   WatchRecorder
	poison     message.Publisher
	cfg        ConsumerConfig
	logger     watermill.LoggerAdapter

	processed atomic.Int64
	dropped   atomic.Int64
}

// NewWatchConsumer creates a consumer reading TopicWatchRecorded.
func NewWatchConsumer(sub message.Subscriber, recorder WatchRecorder, cfg ConsumerConfig, logger watermill.LoggerAdapter, opts ...ConsumerOption) *WatchConsumer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = cfg.RetryDelay
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	c := &WatchConsumer{
		subscriber: sub,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger.With(watermill.LogFields{"topic": TopicWatchRecorded}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRouter builds a router for one run. Middleware runs outermost first:
// poison queue, drop accounting, panic recovery, retry.
func (c *WatchConsumer) newRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.cfg.CloseTimeout}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	if c.poison != nil {
		poisonQueue, err := middleware.PoisonQueue(c.poison, TopicWatchDropped)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		router.AddMiddleware(poisonQueue)
	}
	router.AddMiddleware(c.countDrops, middleware.Recoverer)

	// Retry with MaxRetries 0 still retries once.
	if c.cfg.MaxAttempts > 1 {
		retry := middleware.Retry{
			MaxRetries:      c.cfg.MaxAttempts - 1,
			InitialInterval: c.cfg.RetryDelay,
			MaxInterval:     c.cfg.MaxRetryDelay,
			Multiplier:      2,
			Logger:          c.logger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	router.AddConsumerHandler(watchHandlerName, TopicWatchRecorded, c.subscriber, c.handle)
	return router, nil
}

// RunWithContext runs a router until ctx is canceled. It returns ctx.Err()
// on normal shutdown. Each call builds a fresh router so a supervisor can
// restart the consumer.
func (c *WatchConsumer) RunWithContext(ctx context.Context) error {
	router, err := c.newRouter()
	if err != nil {
		return err
	}

	c.logger.Info("Watch consumer started", nil)
	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubscriptionClosed, err)
	}
	return ErrSubscriptionClosed
}

// handle persists one event. Undecodable events are dropped without retry.
// A returned error is retried by the router middleware.
func (c *WatchConsumer) handle(msg *message.Message) error {
	event, err := UnmarshalWatchEvent(msg.Payload)
	if err != nil {
		c.drop(msg, err)
		return nil
	}

	// The publishing request may already be finished.
	ctx := context.WithoutCancel(msg.Context())
	if err := c.recorder.RecordWatch(ctx, event.ItemID, event.WatchedAt); err != nil {
		return err
	}
	c.processed.Add(1)
	metrics.RecordEventConsumed(TopicWatchRecorded, nil)
	return nil
}

// countDrops accounts for events that failed every attempt. Without a poison
// queue the error is swallowed so the event is acked rather than redelivered.
func (c *WatchConsumer) countDrops(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err == nil {
			return out, nil
		}
		c.drop(msg, err)
		if c.poison == nil {
			return nil, nil
		}
		return nil, err
	}
}

func (c *WatchConsumer) drop(msg *message.Message, err error) {
	c.dropped.Add(1)
	metrics.RecordEventConsumed(TopicWatchRecorded, err)
	c.logger.Error("Dropping watch event", err, watermill.LogFields{
		"message_uuid": msg.UUID,
	})
}

// Processed returns the number of events persisted.
func (c *WatchConsumer) Processed() int64 {
	return c.processed.Load()
}

// Dropped returns the number of events that could not be persisted.
func (c *WatchConsumer) Dropped() int64 {
	return c.dropped.Load()
}
