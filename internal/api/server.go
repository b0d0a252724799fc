// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/storage"
)

// Store is the slice of the storage layer the API reads from.
type Store interface {
	Ping(ctx context.Context) error
	CountEvents(ctx context.Context) (int64, error)
	GetHourlyRollups(ctx context.Context, from, to time.Time) ([]storage.HourlyBucket, error)
}

// StreamInfoProvider reports on the event log stream.
type StreamInfoProvider interface {
	GetStreamInfo(ctx context.Context) (*jetstream.StreamInfo, error)
}

// Router wires the operational endpoints.
type Router struct {
	store     Store
	stream    StreamInfoProvider
	startTime time.Time
}

// NewRouter creates the ops router. stream may be nil when the broker
// is not up yet; the health handler reports it as disconnected.
func NewRouter(store Store, stream StreamInfoProvider) *Router {
	return &Router{
		store:     store,
		stream:    stream,
		startTime: time.Now(),
	}
}

// Setup configures all routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", router.Health)
		r.Get("/health/live", router.HealthLive)
		r.Get("/health/ready", router.HealthReady)
		r.Get("/stats", router.Stats)
		r.Get("/rollups/hourly", router.HourlyRollups)
	})

	return r
}

// NewServer builds the http.Server for the configured listen address.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
