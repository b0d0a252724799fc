// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package enrich resolves profile and geographic data for events.
//
// Resolution chain, best effort at every step:
//
//	actor login -> profile (location, company, repos)
//	profile location -> coordinates, country, timezone
//
// A step that fails leaves its fields null; an event is never dropped
// or delayed past its lookup timeout because enrichment was unavailable.
//
// # Caching and rate limits
//
// Two memoizing caches (profile-by-actor, coordinates-by-location)
// collapse concurrent lookups per key into a single external call via
// singleflight. Failed resolutions become short-TTL negative entries so
// a bad key does not hammer the upstream. A global token-bucket limiter
// bounds geocoding to the upstream policy rate no matter how many
// workers are enriching.
package enrich
