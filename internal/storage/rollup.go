// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/metrics"
)

// RefreshRollups recomputes the events_hourly table from the events
// table. The whole summary is rebuilt in one transaction; at this scale
// a full rebuild stays cheap and avoids partial-bucket drift.
func (db *DB) RefreshRollups(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer metrics.RecordDBQuery("refresh_rollups", start)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rollup transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM events_hourly`); err != nil {
		return fmt.Errorf("failed to clear rollups: %w", err)
	}

	insert := `INSERT INTO events_hourly (bucket, event_type, event_count, actor_count, refreshed_at)
		SELECT
			date_trunc('hour', time) AS bucket,
			event_type,
			COUNT(*) AS event_count,
			COUNT(DISTINCT actor) AS actor_count,
			CURRENT_TIMESTAMP
		FROM events
		GROUP BY bucket, event_type`

	if _, err := tx.ExecContext(ctx, insert); err != nil {
		return fmt.Errorf("failed to rebuild rollups: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollups: %w", err)
	}

	metrics.RollupRefreshes.Inc()
	return nil
}

// HourlyBucket is one row of the events_hourly summary.
type HourlyBucket struct {
	Bucket     time.Time
	EventType  string
	EventCount int64
	ActorCount int64
}

// GetHourlyRollups returns summary rows within [from, to) ordered by
// bucket then event type.
func (db *DB) GetHourlyRollups(ctx context.Context, from, to time.Time) ([]HourlyBucket, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer metrics.RecordDBQuery("get_hourly_rollups", start)

	rows, err := db.conn.QueryContext(ctx, `SELECT bucket, event_type, event_count, actor_count
		FROM events_hourly
		WHERE bucket >= ? AND bucket < ?
		ORDER BY bucket, event_type`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query rollups: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var buckets []HourlyBucket
	for rows.Next() {
		var b HourlyBucket
		if err := rows.Scan(&b.Bucket, &b.EventType, &b.EventCount, &b.ActorCount); err != nil {
			return nil, fmt.Errorf("failed to scan rollup row: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// RollupRefresher periodically rebuilds the hourly summary. It runs as a
// supervised service.
type RollupRefresher struct {
	db       *DB
	interval time.Duration
	logger   zerolog.Logger
}

// NewRollupRefresher builds a refresher from configuration.
func NewRollupRefresher(db *DB, cfg config.RollupConfig) *RollupRefresher {
	return &RollupRefresher{
		db:       db,
		interval: cfg.RefreshInterval,
		logger:   logging.With().Str("component", "rollup").Logger(),
	}
}

// Serve refreshes the rollups on the configured interval until the
// context is canceled. Implements suture.Service.
func (r *RollupRefresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.db.RefreshRollups(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn().Err(err).Msg("Rollup refresh failed")
				continue
			}
			r.logger.Debug().Msg("Rollups refreshed")
		}
	}
}

func (r *RollupRefresher) String() string { return "rollup-refresher" }
