// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package api exposes the operational HTTP surface: health probes,
// Prometheus metrics, and read-only pipeline stats.
//
// Routes (Chi router):
//
//	GET /metrics                  Prometheus exposition
//	GET /api/v1/health            composite health with component detail
//	GET /api/v1/health/live       liveness probe
//	GET /api/v1/health/ready      readiness probe (database reachable)
//	GET /api/v1/stats             stored event and stream depth counts
//	GET /api/v1/rollups/hourly    hourly per-type aggregates
//
// The surface is read-only and unauthenticated; it is meant for
// operators and scrapers on a trusted network, not end users.
package api
