// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package producer drives the poll-dedup-publish loop that feeds the
// event log.
//
// Each tick fetches a batch, stamps ingestion time, skips IDs already in
// the dedup window, and publishes the rest in feed order. An ID is
// marked seen only after its publish was acknowledged; a publish that
// exhausts its retries stays unmarked and is retried on the next poll.
package producer
