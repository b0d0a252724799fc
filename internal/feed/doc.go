// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package feed polls the GitHub public events API and decodes the results
// into raw event records.
//
// Faults never escape this boundary: a failing fetch yields whatever
// events were gathered before the fault (possibly none), is logged and
// counted, and the next tick retries. The poller never blocks past its
// bounded request timeout.
//
// ETags short-circuit unchanged pages with 304 responses, and rate-limit
// rejections surface the upstream reset time in the logs without
// stalling the poll loop.
package feed
