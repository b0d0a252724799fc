// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package dedup provides the time-windowed duplicate suppression used by
// the producer.
//
// The window remembers event IDs for a retention horizon and evicts them
// by time, not by count, so memory is bounded by the feed's event rate
// times the window length. Expiry is lazy on read, with a background
// sweeper reclaiming entries that are never read again.
//
// Replay of an ID after the window expires is tolerated: downstream the
// storage sink's upsert makes it harmless. This is a documented weak
// guarantee, not exactly-once.
package dedup
