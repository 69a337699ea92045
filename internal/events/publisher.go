// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/naatfeed/internal/metrics"
)

// BusConfig configures the in-process pub/sub.
type BusConfig struct {
	// OutputChannelBuffer is the per-subscriber channel buffer.
	OutputChannelBuffer int64

	// Persistent replays earlier messages to late subscribers. Without it,
	// events published before the consumer subscribes are dropped.
	Persistent bool
}

// NewBus creates the in-process watermill pub/sub shared by publishers and
// consumers.
func NewBus(cfg BusConfig, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputChannelBuffer,
		Persistent:          cfg.Persistent,
	}, logger)
}

// Publisher wraps a watermill publisher with circuit breaker protection.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	logger         watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a Publisher. A nil breaker publishes unprotected.
func NewPublisher(pub message.Publisher, cb *gobreaker.CircuitBreaker[interface{}], logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Publisher{
		publisher:      pub,
		circuitBreaker: cb,
		logger:         logger,
	}
}

// Publish sends a message to the topic through the circuit breaker.
// While the breaker is open, Publish fails fast with gobreaker.ErrOpenState.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg.SetContext(ctx)

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	metrics.RecordEventPublished(topic, err)
	if err != nil {
		p.logger.Error("Event publish failed", err, watermill.LogFields{
			"topic":        topic,
			"message_uuid": msg.UUID,
		})
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// PublishWatch serializes and publishes a watch event.
func (p *Publisher) PublishWatch(ctx context.Context, event *WatchEvent) error {
	data, err := MarshalWatchEvent(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("item_id", event.ItemID)
	if event.SessionID != "" {
		msg.Metadata.Set("session_id", event.SessionID)
	}
	return p.Publish(ctx, TopicWatchRecorded, msg)
}

// Close stops accepting messages. The underlying publisher is owned by the
// caller and is not closed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
