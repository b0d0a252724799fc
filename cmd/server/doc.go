// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Octoscope ingests the public GitHub events feed into a durable
// pipeline: a poller fetches and deduplicates events, publishes them to
// a NATS JetStream log, and a consumer group enriches each event with
// actor profile and geographic data before persisting it to DuckDB.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layering defaults, config file, env vars
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB with the events and rollup schema
//  4. Broker: embedded or external NATS with JetStream provisioning
//  5. Supervision tree: producer, consumer, rollup refresher, ops HTTP
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful drain: the producer finishes
// its in-flight publishes, consumer workers persist and acknowledge
// their in-flight deliveries, then broker and database close.
package main
