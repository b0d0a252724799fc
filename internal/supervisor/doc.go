// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package supervisor builds the Suture supervision tree for the
// pipeline.
//
// Tree layout:
//
//	octoscope (root)
//	├── ingest-layer       producer
//	├── processing-layer   consumer, rollup refresher
//	└── ops-layer          HTTP server
//
// Each layer restarts its own services with exponential backoff without
// disturbing the others. Supervisor events are logged through sutureslog
// onto the shared zerolog stream.
package supervisor
