// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

// profileLookup and geocodeLookup let tests substitute the external clients.
type profileLookup interface {
	Lookup(ctx context.Context, login string) (*models.Profile, error)
}

type geocodeLookup interface {
	Lookup(ctx context.Context, location string) (*models.GeoLocation, error)
}

// Enricher turns raw events into enriched rows.
//
// Both resolutions are independent and best-effort: either may end
// unresolved without aborting the event. The caches and their negative
// entries are shared across all workers of the consumer.
type Enricher struct {
	profiles *Cache
	geocodes *Cache

	profileClient profileLookup
	geocodeClient geocodeLookup

	logger zerolog.Logger
}

// NewEnricher wires the caches, the rate limiter, and the external clients.
func NewEnricher(cfg config.EnrichConfig, githubToken string) *Enricher {
	limiter := NewLimiter(cfg.GeocodeRatePerSec)

	return &Enricher{
		profiles:      NewCache("profile", cfg.ProfileTTL, cfg.NegativeTTL),
		geocodes:      NewCache("geocode", cfg.GeocodeTTL, cfg.NegativeTTL),
		profileClient: NewProfileClient(cfg.ProfileAPIURL, githubToken, cfg.LookupTimeout),
		geocodeClient: NewGeocodeClient(cfg.GeocodeAPIURL, limiter, cfg.LookupTimeout),
		logger:        logging.With().Str("component", "enrich").Logger(),
	}
}

// Enrich builds the persisted form of a raw event with whatever profile
// and geographic fields resolve. It never returns an error: an event with
// both lookups failed still carries its raw fields.
func (e *Enricher) Enrich(ctx context.Context, raw *models.RawEvent) *models.EnrichedEvent {
	row := models.NewEnrichedEvent(raw)

	profile := e.resolveProfile(ctx, raw.Actor.Login)
	if profile == nil {
		return row
	}
	row.ApplyProfile(profile)

	if profile.Location == nil {
		return row
	}
	row.ApplyGeo(e.resolveGeo(ctx, *profile.Location))

	return row
}

// resolveProfile returns the cached or freshly fetched profile, or nil.
func (e *Enricher) resolveProfile(ctx context.Context, login string) *models.Profile {
	if login == "" {
		return nil
	}

	value, ok := e.profiles.Resolve(ctx, login, func(ctx context.Context) (interface{}, error) {
		profile, err := e.profileClient.Lookup(ctx, login)
		if err != nil {
			metrics.RecordEnrichmentFailure("profile")
			e.logger.Debug().Err(err).Str("login", login).Msg("profile lookup failed")
			return nil, err
		}
		return profile, nil
	})
	if !ok {
		return nil
	}

	profile, _ := value.(*models.Profile)
	return profile
}

// resolveGeo returns the cached or freshly fetched geolocation, or nil.
func (e *Enricher) resolveGeo(ctx context.Context, location string) *models.GeoLocation {
	key := NormalizeLocation(location)
	if key == "" {
		return nil
	}

	value, ok := e.geocodes.Resolve(ctx, key, func(ctx context.Context) (interface{}, error) {
		geo, err := e.geocodeClient.Lookup(ctx, location)
		if err != nil {
			metrics.RecordEnrichmentFailure("geocode")
			e.logger.Debug().Err(err).Str("location", location).Msg("geocode lookup failed")
			return nil, err
		}
		return geo, nil
	})
	if !ok {
		return nil
	}

	geo, _ := value.(*models.GeoLocation)
	return geo
}
