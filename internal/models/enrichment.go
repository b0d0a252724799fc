// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package models

import "time"

// Profile holds the subset of a GitHub user profile used for enrichment.
// All fields are best-effort; a failed or 404 lookup leaves them nil.
type Profile struct {
	Login       string  `json:"login"`
	Location    *string `json:"location,omitempty"`
	Company     *string `json:"company,omitempty"`
	PublicRepos *int    `json:"public_repos,omitempty"`
}

// GeoLocation holds geocoding results for a free-text location string.
type GeoLocation struct {
	Country     *string  `json:"country,omitempty"`
	CountryCode *string  `json:"country_code,omitempty"`
	Timezone    *string  `json:"timezone,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// EnrichedEvent is the terminal form of an event: the raw fields plus
// whatever profile and geographic data resolved. It maps 1:1 onto a row
// in the events table, keyed by (Time, EventID).
type EnrichedEvent struct {
	Time    time.Time
	EventID string
	Type    string
	Actor   string
	Repo    string
	Detail  string

	Location    *string
	Country     *string
	CountryCode *string
	Timezone    *string
	Latitude    *float64
	Longitude   *float64
	Company     *string
	PublicRepos *int

	// Payload carries the original type-specific payload as opaque JSON
	// for future reprocessing.
	Payload []byte
}

// NewEnrichedEvent builds the persisted form from a raw event with no
// enrichment applied. Enrichment fields are filled in afterwards when the
// lookups resolve.
func NewEnrichedEvent(raw *RawEvent) *EnrichedEvent {
	return &EnrichedEvent{
		Time:    raw.Time(),
		EventID: raw.ID,
		Type:    raw.Type,
		Actor:   raw.Actor.Login,
		Repo:    raw.Repo.Name,
		Detail:  raw.Detail(),
		Payload: raw.Payload,
	}
}

// ApplyProfile copies resolved profile fields onto the row.
func (e *EnrichedEvent) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	e.Location = p.Location
	e.Company = p.Company
	e.PublicRepos = p.PublicRepos
}

// ApplyGeo copies resolved geographic fields onto the row.
func (e *EnrichedEvent) ApplyGeo(g *GeoLocation) {
	if g == nil {
		return
	}
	e.Country = g.Country
	e.CountryCode = g.CountryCode
	e.Timezone = g.Timezone
	e.Latitude = g.Latitude
	e.Longitude = g.Longitude
}
