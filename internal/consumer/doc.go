// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package consumer drains the event log, enriches each event, and
// persists it.
//
// # Delivery semantics
//
// An event is acknowledged only after its row is durably written, so a
// crash mid-flight leads to redelivery, and redelivery lands on the same
// (time, event_id) row. Three terminal outcomes exist per delivery:
//
//   - Persisted: the row is upserted, the message is acked.
//   - Poison: the message cannot decode and never will; it is acked and
//     counted instead of cycling through redeliveries.
//   - Persist exhaustion: the write failed after bounded retries; the
//     message is nacked for redelivery.
//
// Enrichment failure is not an outcome: the event persists with null
// enrichment fields rather than being dropped or redelivered.
//
// # Shutdown
//
// On cancellation the workers stop pulling new messages but finish the
// deliveries already in hand, so no message is acked without its write
// or written without its ack.
package consumer
