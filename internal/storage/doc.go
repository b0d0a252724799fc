// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package storage persists enriched events into DuckDB.
//
// # Schema
//
// The events table is keyed by (time, event_id) so redeliveries from the
// log collapse into idempotent upserts: a redelivered event overwrites
// its own row, including enrichment columns, and never duplicates it.
// A periodic rollup materializes hourly per-type counts into
// events_hourly for the stats endpoints.
//
// # Write path
//
// Every statement runs under a context deadline. Transient transaction
// conflicts retry with short exponential backoff; the pool is kept small
// on purpose, acting as the pipeline's backpressure point.
package storage
