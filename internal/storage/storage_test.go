// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

func strptr(s string) *string { return &s }

func testRow(id string, ts time.Time) *models.EnrichedEvent {
	return &models.EnrichedEvent{
		Time:    ts,
		EventID: id,
		Type:    "PushEvent",
		Actor:   "alice",
		Repo:    "octo/repo",
		Detail:  "2 commit(s)",
		Payload: []byte(`{"size":2}`),
	}
}

func TestUpsertEvent_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	row := testRow("e1", ts)
	for i := 0; i < 3; i++ {
		if err := db.UpsertEvent(ctx, row); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after repeated upserts, got %d", count)
	}
}

func TestUpsertEvent_RedeliveryOverwritesEnrichment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// First delivery persists with enrichment unresolved.
	bare := testRow("e1", ts)
	if err := db.UpsertEvent(ctx, bare); err != nil {
		t.Fatal(err)
	}

	// A redelivery that resolved enrichment replaces the row in place.
	enriched := testRow("e1", ts)
	enriched.Country = strptr("United States")
	enriched.CountryCode = strptr("US")
	enriched.Company = strptr("Acme")
	if err := db.UpsertEvent(ctx, enriched); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetEvent(ctx, ts, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if got.CountryCode == nil || *got.CountryCode != "US" {
		t.Errorf("expected country code US, got %v", got.CountryCode)
	}
	if got.Company == nil || *got.Company != "Acme" {
		t.Errorf("expected company Acme, got %v", got.Company)
	}
	if got.Actor != "alice" || got.Detail != "2 commit(s)" {
		t.Errorf("raw fields lost: %+v", got)
	}
}

func TestUpsertEvent_NullEnrichmentFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := db.UpsertEvent(ctx, testRow("e1", ts)); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetEvent(ctx, ts, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Location != nil || got.Country != nil || got.Latitude != nil || got.PublicRepos != nil {
		t.Errorf("expected null enrichment fields, got %+v", got)
	}
}

func TestRefreshRollups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	hour := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	rows := []*models.EnrichedEvent{
		testRow("e1", hour.Add(5*time.Minute)),
		testRow("e2", hour.Add(10*time.Minute)),
		testRow("e3", hour.Add(70*time.Minute)),
	}
	rows[1].Actor = "bob"
	for _, row := range rows {
		if err := db.UpsertEvent(ctx, row); err != nil {
			t.Fatal(err)
		}
	}

	if err := db.RefreshRollups(ctx); err != nil {
		t.Fatal(err)
	}

	buckets, err := db.GetHourlyRollups(ctx, hour, hour.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 hourly buckets, got %d", len(buckets))
	}
	if buckets[0].EventCount != 2 || buckets[0].ActorCount != 2 {
		t.Errorf("first bucket: got %+v", buckets[0])
	}
	if buckets[1].EventCount != 1 {
		t.Errorf("second bucket: got %+v", buckets[1])
	}

	// Refresh is a full rebuild, not an accumulation.
	if err := db.RefreshRollups(ctx); err != nil {
		t.Fatal(err)
	}
	buckets, err = db.GetHourlyRollups(ctx, hour, hour.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 2 || buckets[0].EventCount != 2 {
		t.Errorf("rollup not stable across refreshes: %+v", buckets)
	}
}
