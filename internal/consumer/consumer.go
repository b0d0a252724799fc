// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/eventlog"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

// messageSource, eventEnricher, and eventSink are satisfied by
// eventlog.Subscriber, enrich.Enricher, and storage.DB.
type messageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type eventEnricher interface {
	Enrich(ctx context.Context, raw *models.RawEvent) *models.EnrichedEvent
}

type eventSink interface {
	UpsertEvent(ctx context.Context, row *models.EnrichedEvent) error
}

// Consumer runs a pool of workers over the durable subscription.
type Consumer struct {
	source   messageSource
	enricher eventEnricher
	sink     eventSink
	codec    *eventlog.Codec

	topic          string
	workers        int
	persistRetries int
	persistBackoff time.Duration

	logger zerolog.Logger
}

// New builds a consumer from configuration.
func New(source messageSource, enricher eventEnricher, sink eventSink, nats config.NATSConfig, enrich config.EnrichConfig) *Consumer {
	return &Consumer{
		source:         source,
		enricher:       enricher,
		sink:           sink,
		codec:          eventlog.NewCodec(),
		topic:          nats.Subject,
		workers:        enrich.Workers,
		persistRetries: enrich.PersistRetries,
		persistBackoff: enrich.PersistBackoff,
		logger:         logging.With().Str("component", "consumer").Logger(),
	}
}

// Serve subscribes and processes messages until the context is
// canceled. Workers drain their in-flight message before returning.
// Implements suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.source.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}

	c.logger.Info().
		Str("topic", c.topic).
		Int("workers", c.workers).
		Msg("Consumer started")

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range messages {
				c.handleMessage(ctx, msg)
			}
		}()
	}

	wg.Wait()
	c.logger.Info().Msg("Consumer stopped")
	return ctx.Err()
}

func (c *Consumer) String() string { return "consumer" }

// handleMessage processes one delivery end to end. The ack decision is
// the last thing that happens: Ack after a durable write (or for a
// poison message that can never decode), Nack when persistence failed
// so the broker redelivers.
func (c *Consumer) handleMessage(ctx context.Context, msg *message.Message) {
	raw, err := c.codec.Unmarshal(msg.Payload)
	if err != nil {
		// Undecodable payloads never improve on redelivery.
		metrics.PoisonMessages.Inc()
		c.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable message")
		msg.Ack()
		return
	}

	metrics.EventsConsumed.Inc()

	// Shutdown must not abandon a delivery between write and ack, so
	// enrichment and persistence run detached from the serve context.
	// Their own timeouts still bound them.
	workCtx := context.WithoutCancel(ctx)

	row := c.enricher.Enrich(workCtx, raw)

	if err := c.persistWithRetry(workCtx, row); err != nil {
		c.logger.Error().Err(err).
			Str("event_id", raw.ID).
			Msg("Persist failed, requesting redelivery")
		msg.Nack()
		return
	}

	metrics.EventsPersisted.Inc()
	msg.Ack()
}

// persistWithRetry attempts the upsert with exponential backoff.
func (c *Consumer) persistWithRetry(ctx context.Context, row *models.EnrichedEvent) error {
	var lastErr error
	for attempt := 0; attempt < c.persistRetries; attempt++ {
		if attempt > 0 {
			backoff := c.persistBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = c.sink.UpsertEvent(ctx, row); lastErr == nil {
			return nil
		}
		metrics.PersistErrors.Inc()
	}
	return lastErr
}
