// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Producer metrics
	EventsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_fetched_total",
			Help: "Total number of events decoded from the upstream feed",
		},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of feed fetch failures by reason",
		},
		[]string{"reason"}, // "network", "rate_limited", "decode", "status"
	)

	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "producer_events_published_total",
			Help: "Total number of events acknowledged by the log",
		},
	)

	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "producer_publish_errors_total",
			Help: "Total number of failed publish attempts (including retried)",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "producer_events_dropped_total",
			Help: "Total number of events dropped after exhausting publish retries",
		},
	)

	DuplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "producer_duplicates_skipped_total",
			Help: "Total number of events skipped by the dedup window",
		},
	)

	DedupWindowSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "producer_dedup_window_entries",
			Help: "Current number of event IDs tracked in the dedup window",
		},
	)

	// Consumer metrics
	EventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consumer_events_consumed_total",
			Help: "Total number of messages pulled from the log",
		},
	)

	EventsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consumer_events_persisted_total",
			Help: "Total number of rows upserted into the storage sink",
		},
	)

	PersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consumer_persist_errors_total",
			Help: "Total number of failed sink writes (including retried)",
		},
	)

	PoisonMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consumer_poison_messages_total",
			Help: "Total number of undecodable messages acked without persisting",
		},
	)

	// Enrichment metrics
	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_failures_total",
			Help: "Total number of failed enrichment lookups by kind",
		},
		[]string{"kind"}, // "profile", "geocode"
	)

	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrichment_lookup_duration_seconds",
			Help:    "Duration of external enrichment lookups in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	GeocodeCalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enrichment_geocode_calls_total",
			Help: "Total number of geocoding requests issued past the rate limiter",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_cache_hits_total",
			Help: "Total number of enrichment cache hits",
		},
		[]string{"cache"}, // "profile", "geocode"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_cache_misses_total",
			Help: "Total number of enrichment cache misses",
		},
		[]string{"cache"},
	)

	// Storage metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RollupRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rollup_refreshes_total",
			Help: "Total number of rollup view refreshes",
		},
	)
)

// RecordFetchError increments the fetch error counter for a reason.
func RecordFetchError(reason string) {
	FetchErrors.WithLabelValues(reason).Inc()
}

// RecordEnrichmentFailure increments the enrichment failure counter for a kind.
func RecordEnrichmentFailure(kind string) {
	EnrichmentFailures.WithLabelValues(kind).Inc()
}

// RecordLookup observes the duration of an external lookup.
func RecordLookup(kind string, start time.Time) {
	LookupDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// RecordCacheHit increments the hit counter for a cache.
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a cache.
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordDBQuery observes the duration of a database operation.
func RecordDBQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
