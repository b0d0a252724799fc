// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package metrics provides Prometheus instrumentation for the pipeline.
//
// Counters cover every boundary where events can be gained or lost:
// feed fetches, publishes, drops, duplicates, enrichment lookups, and
// sink writes. Dropped-after-retry publishes are the only silent data
// loss in the system and must stay visible here.
package metrics
