// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package eventlog is the boundary to the durable event log.
//
// It wraps Watermill over NATS JetStream: a resilient publisher for the
// producer side, a durable queue-group subscriber for the consumer side,
// stream provisioning, and an optional embedded broker for single-node
// deployments.
//
// # Stream layout
//
// Raw events live on one stream with limits retention (age and bytes).
// Each message carries the event ID as its Nats-Msg-Id, so the stream's
// duplicate window absorbs producer re-publishes after a crash between
// publish and dedup mark.
//
// # Components
//
//   - Publisher: watermill-nats publisher with an optional circuit
//     breaker wrapped around publishes.
//   - Subscriber: durable queue-group consumer with bounded redelivery
//     (MaxDeliver) and an explicit AckWait.
//   - StreamManager: idempotent stream provisioning at startup.
//   - EmbeddedServer: in-process nats-server for deployments without an
//     external broker.
//   - Codec: JSON marshaling of raw events onto the wire, rejecting
//     events that fail validation before they reach the stream.
package eventlog
