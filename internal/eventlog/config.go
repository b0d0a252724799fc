// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package eventlog

import (
	"time"

	"github.com/octoscope/octoscope/internal/config"
)

// PublisherConfig holds settings for the raw-events publisher.
type PublisherConfig struct {
	URL             string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// SubscriberConfig holds settings for the durable enrichment subscriber.
type SubscriberConfig struct {
	URL            string
	StreamName     string
	DurableName    string
	QueueGroup     string
	MaxDeliver     int
	AckWaitTimeout time.Duration
	CloseTimeout   time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// StreamConfig holds the JetStream stream definition for the raw topic.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	DuplicateWindow time.Duration
}

// ServerConfig holds settings for the embedded NATS server.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// PublisherConfigFromApp derives publisher settings from the app config.
func PublisherConfigFromApp(cfg config.NATSConfig, url string) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		MaxReconnects:   cfg.MaxReconnects,
		ReconnectWait:   cfg.ReconnectWait,
		ReconnectBuffer: 8 << 20, // 8MB buffered while reconnecting
	}
}

// SubscriberConfigFromApp derives subscriber settings from the app config.
func SubscriberConfigFromApp(cfg config.NATSConfig, url string) SubscriberConfig {
	return SubscriberConfig{
		URL:            url,
		StreamName:     cfg.StreamName,
		DurableName:    cfg.DurableName,
		QueueGroup:     cfg.QueueGroup,
		MaxDeliver:     cfg.MaxDeliver,
		AckWaitTimeout: cfg.AckWait,
		CloseTimeout:   30 * time.Second,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
	}
}

// StreamConfigFromApp derives the stream definition from the app config.
func StreamConfigFromApp(cfg config.NATSConfig) StreamConfig {
	return StreamConfig{
		Name:            cfg.StreamName,
		Subjects:        []string{cfg.Subject},
		MaxAge:          cfg.MaxAge,
		MaxBytes:        cfg.MaxBytes,
		DuplicateWindow: cfg.DuplicateWindow,
	}
}
