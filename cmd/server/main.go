// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/octoscope/octoscope/internal/api"
	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/consumer"
	"github.com/octoscope/octoscope/internal/dedup"
	"github.com/octoscope/octoscope/internal/enrich"
	"github.com/octoscope/octoscope/internal/feed"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/producer"
	"github.com/octoscope/octoscope/internal/storage"
	"github.com/octoscope/octoscope/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("Starting Octoscope")

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brk, err := setupBroker(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to set up event log broker")
	}
	defer brk.close(context.Background())

	// Producer side: poller, dedup window, publisher.
	window := dedup.New(cfg.Dedup.Window, cfg.Dedup.SweepInterval)
	defer window.Stop()
	poller := feed.NewPoller(cfg.GitHub)
	prod := producer.New(poller, brk.publisher, window, cfg.GitHub, cfg.NATS)

	// Consumer side: enrichment workers over the durable subscription.
	enricher := enrich.NewEnricher(cfg.Enrich, cfg.GitHub.Token)
	cons := consumer.New(brk.subscriber, enricher, db, cfg.NATS, cfg.Enrich)

	// Ops HTTP server.
	router := api.NewRouter(db, brk.streams)
	httpServer := api.NewServer(cfg.Server, router.Setup())

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIngestService(prod)
	tree.AddProcessingService(cons)
	if cfg.Rollup.Enabled {
		tree.AddProcessingService(storage.NewRollupRefresher(db, cfg.Rollup))
	}
	tree.AddOpsService(supervisor.NewHTTPServerService(httpServer, 10*time.Second))
	logging.Info().Str("addr", httpServer.Addr).Msg("Ops HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Octoscope stopped gracefully")
}
