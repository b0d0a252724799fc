// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/eventlog"
	"github.com/octoscope/octoscope/internal/logging"
)

// broker bundles everything attached to the event log connection.
type broker struct {
	embedded   *eventlog.EmbeddedServer
	conn       *natsgo.Conn
	streams    *eventlog.StreamManager
	publisher  *eventlog.Publisher
	subscriber *eventlog.Subscriber
}

// setupBroker starts the embedded server when configured, connects,
// provisions the stream, and builds the publisher and subscriber.
func setupBroker(ctx context.Context, cfg *config.Config) (*broker, error) {
	b := &broker{}
	clientURL := cfg.NATS.URL

	if cfg.NATS.EmbeddedServer {
		host, port, err := splitNATSURL(cfg.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("parse NATS URL: %w", err)
		}

		embedded, err := eventlog.NewEmbeddedServer(&eventlog.ServerConfig{
			Host:              host,
			Port:              port,
			StoreDir:          cfg.NATS.StoreDir,
			JetStreamMaxMem:   256 << 20,
			JetStreamMaxStore: 2 * cfg.NATS.MaxBytes,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		b.embedded = embedded
		clientURL = embedded.ClientURL()
		logging.Info().Str("url", clientURL).Msg("Embedded NATS server started")
	}

	conn, err := natsgo.Connect(clientURL,
		natsgo.MaxReconnects(cfg.NATS.MaxReconnects),
		natsgo.ReconnectWait(cfg.NATS.ReconnectWait),
	)
	if err != nil {
		b.close(ctx)
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	b.conn = conn

	streamCfg := eventlog.StreamConfigFromApp(cfg.NATS)
	streams, err := eventlog.NewStreamManager(conn, &streamCfg)
	if err != nil {
		b.close(ctx)
		return nil, fmt.Errorf("create stream manager: %w", err)
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		b.close(ctx)
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	b.streams = streams

	wmLogger := logging.NewWatermillAdapter()

	publisher, err := eventlog.NewPublisher(eventlog.PublisherConfigFromApp(cfg.NATS, clientURL), wmLogger)
	if err != nil {
		b.close(ctx)
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	publisher.SetCircuitBreaker(gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}))
	b.publisher = publisher

	subCfg := eventlog.SubscriberConfigFromApp(cfg.NATS, clientURL)
	subscriber, err := eventlog.NewSubscriber(&subCfg, wmLogger)
	if err != nil {
		b.close(ctx)
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	b.subscriber = subscriber

	return b, nil
}

// close tears down broker components in reverse order of construction.
func (b *broker) close(ctx context.Context) {
	if b.subscriber != nil {
		if err := b.subscriber.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close subscriber")
		}
	}
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close publisher")
		}
	}
	if b.conn != nil {
		b.conn.Close()
	}
	if b.embedded != nil {
		if err := b.embedded.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to shut down embedded NATS server")
		}
	}
}

// splitNATSURL extracts host and port from a nats:// URL.
func splitNATSURL(raw string) (string, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, err
	}
	host := u.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := 4222
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, err
		}
	}
	return host, port, nil
}
