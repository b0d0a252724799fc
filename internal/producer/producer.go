// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package producer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/dedup"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

// eventSource and eventPublisher are satisfied by feed.Poller and
// eventlog.Publisher; tests substitute fakes.
type eventSource interface {
	Fetch(ctx context.Context) []models.RawEvent
}

type eventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *models.RawEvent) error
}

// Producer polls the upstream feed, skips already-published events, and
// publishes the remainder to the log. An event ID enters the dedup
// window only after its publish was acknowledged, so a crash between
// publish and mark causes a re-publish that the stream's duplicate
// window absorbs.
type Producer struct {
	source    eventSource
	publisher eventPublisher
	window    *dedup.Window

	topic        string
	pollInterval time.Duration
	retries      int
	retryBackoff time.Duration

	logger zerolog.Logger
}

// New builds a producer from configuration.
func New(source eventSource, publisher eventPublisher, window *dedup.Window, github config.GitHubConfig, nats config.NATSConfig) *Producer {
	return &Producer{
		source:       source,
		publisher:    publisher,
		window:       window,
		topic:        nats.Subject,
		pollInterval: github.PollInterval,
		retries:      nats.PublishRetries,
		retryBackoff: 100 * time.Millisecond,
		logger:       logging.With().Str("component", "producer").Logger(),
	}
}

// Serve runs the poll loop until the context is canceled. The tick in
// flight finishes its publishes before Serve returns. Implements
// suture.Service.
func (p *Producer) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.Info().
		Str("topic", p.topic).
		Dur("poll_interval", p.pollInterval).
		Msg("Producer started")

	// First poll happens immediately, not one interval in.
	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Producer stopping")
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Producer) String() string { return "producer" }

// pollOnce fetches one batch and publishes every unseen event in order.
func (p *Producer) pollOnce(ctx context.Context) {
	events := p.source.Fetch(ctx)
	if len(events) == 0 {
		return
	}

	now := time.Now().UTC()
	published := 0
	for i := range events {
		if ctx.Err() != nil {
			return
		}

		event := &events[i]
		// Events without a usable created_at fall back to this stamp for
		// both the dedup mark and the storage partition key.
		event.IngestedAt = now
		if p.window.Seen(event.ID) {
			metrics.DuplicatesSkipped.Inc()
			continue
		}

		if err := p.publishWithRetry(ctx, event); err != nil {
			// Not marked seen, so the next poll retries it. The
			// stream's duplicate window covers the case where the
			// broker acked but the response was lost.
			metrics.EventsDropped.Inc()
			p.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				Msg("Publish failed after retries")
			continue
		}

		p.window.Mark(event.ID, event.Time())
		published++
	}

	if published > 0 {
		p.logger.Debug().
			Int("fetched", len(events)).
			Int("published", published).
			Msg("Batch published")
	}
}

// publishWithRetry attempts the publish with exponential backoff.
func (p *Producer) publishWithRetry(ctx context.Context, event *models.RawEvent) error {
	var lastErr error
	for attempt := 0; attempt < p.retries; attempt++ {
		if attempt > 0 {
			backoff := p.retryBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = p.publisher.PublishEvent(ctx, p.topic, event); lastErr == nil {
			return nil
		}
		metrics.PublishErrors.Inc()
	}
	return lastErr
}
