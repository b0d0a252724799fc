// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package models defines the event and enrichment types shared across
// the pipeline: the raw feed event as published to the log, the enriched
// row as persisted, and the profile and geolocation shapes resolved
// during enrichment.
package models
