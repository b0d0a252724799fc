// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

// UpsertEvent inserts or updates one enriched event row. Redelivered
// events land on the (time, event_id) key and overwrite in place, so the
// call is idempotent. Transaction conflicts between concurrent workers
// retry with exponential backoff.
func (db *DB) UpsertEvent(ctx context.Context, row *models.EnrichedEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer metrics.RecordDBQuery("upsert_event", start)

	const maxRetries = 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.doUpsertEvent(ctx, row)
		if err == nil {
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}

		if !isTransactionConflict(err) {
			return err
		}

		if attempt < maxRetries-1 {
			backoff := time.Millisecond * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (db *DB) doUpsertEvent(ctx context.Context, row *models.EnrichedEvent) error {
	query := `INSERT INTO events (
		time, event_id, event_type, actor, repo, detail,
		location, country, country_code, timezone, latitude, longitude,
		company, public_repos, payload
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (time, event_id) DO UPDATE SET
		event_type = EXCLUDED.event_type,
		actor = EXCLUDED.actor,
		repo = EXCLUDED.repo,
		detail = EXCLUDED.detail,
		location = EXCLUDED.location,
		country = EXCLUDED.country,
		country_code = EXCLUDED.country_code,
		timezone = EXCLUDED.timezone,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		company = EXCLUDED.company,
		public_repos = EXCLUDED.public_repos,
		payload = EXCLUDED.payload`

	var payload interface{}
	if len(row.Payload) > 0 {
		payload = string(row.Payload)
	}

	_, err := db.conn.ExecContext(ctx, query,
		row.Time, row.EventID, row.Type, row.Actor, row.Repo, row.Detail,
		row.Location, row.Country, row.CountryCode, row.Timezone,
		row.Latitude, row.Longitude, row.Company, row.PublicRepos, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", row.EventID, err)
	}
	return nil
}

// CountEvents returns the total number of stored events.
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer metrics.RecordDBQuery("count_events", start)

	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// GetEvent fetches one event row by its primary key.
func (db *DB) GetEvent(ctx context.Context, eventTime time.Time, eventID string) (*models.EnrichedEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer metrics.RecordDBQuery("get_event", start)

	query := `SELECT
		time, event_id, event_type, actor, repo, detail,
		location, country, country_code, timezone, latitude, longitude,
		company, public_repos, CAST(payload AS VARCHAR)
	FROM events WHERE time = ? AND event_id = ?`

	var row models.EnrichedEvent
	var payload *string
	err := db.conn.QueryRowContext(ctx, query, eventTime, eventID).Scan(
		&row.Time, &row.EventID, &row.Type, &row.Actor, &row.Repo, &row.Detail,
		&row.Location, &row.Country, &row.CountryCode, &row.Timezone,
		&row.Latitude, &row.Longitude, &row.Company, &row.PublicRepos, &payload,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if payload != nil {
		row.Payload = []byte(*payload)
	}
	return &row, nil
}

// isTransactionConflict reports whether an error is a DuckDB write-write
// conflict that is safe to retry.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transaction conflict") ||
		strings.Contains(msg, "conflict on") ||
		strings.Contains(msg, "write-write conflict")
}
