// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/octoscope/octoscope/internal/models"
)

type fakeProfiles struct {
	profiles map[string]*models.Profile
	calls    int
}

func (f *fakeProfiles) Lookup(ctx context.Context, login string) (*models.Profile, error) {
	f.calls++
	if p, ok := f.profiles[login]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

type fakeGeocoder struct {
	locations map[string]*models.GeoLocation
	calls     int
}

func (f *fakeGeocoder) Lookup(ctx context.Context, location string) (*models.GeoLocation, error) {
	f.calls++
	if g, ok := f.locations[NormalizeLocation(location)]; ok {
		return g, nil
	}
	return nil, errors.New("geocode unavailable")
}

func strptr(s string) *string { return &s }

func testEnricher(profiles *fakeProfiles, geos *fakeGeocoder) *Enricher {
	return &Enricher{
		profiles:      NewCache("profile", time.Hour, time.Minute),
		geocodes:      NewCache("geocode", time.Hour, time.Minute),
		profileClient: profiles,
		geocodeClient: geos,
	}
}

func rawEvent(id, actor string) *models.RawEvent {
	return &models.RawEvent{
		ID:        id,
		Type:      "PushEvent",
		Actor:     models.Actor{Login: actor},
		Repo:      models.Repo{Name: "r/x"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestEnricher_FullResolution(t *testing.T) {
	lat, lon := 37.77, -122.42
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{
		"alice": {Login: "alice", Location: strptr("San Francisco, CA"), Company: strptr("Acme")},
	}}
	geos := &fakeGeocoder{locations: map[string]*models.GeoLocation{
		"san francisco, ca": {Country: strptr("United States"), CountryCode: strptr("US"), Latitude: &lat, Longitude: &lon},
	}}

	e := testEnricher(profiles, geos)
	row := e.Enrich(context.Background(), rawEvent("e1", "alice"))

	if row.Company == nil || *row.Company != "Acme" {
		t.Errorf("expected company Acme, got %v", row.Company)
	}
	if row.CountryCode == nil || *row.CountryCode != "US" {
		t.Errorf("expected country code US, got %v", row.CountryCode)
	}
	if row.Latitude == nil || *row.Latitude != lat {
		t.Errorf("expected latitude %v, got %v", lat, row.Latitude)
	}
}

func TestEnricher_BestEffortOnTotalFailure(t *testing.T) {
	e := testEnricher(&fakeProfiles{}, &fakeGeocoder{})

	row := e.Enrich(context.Background(), rawEvent("e1", "ghost"))

	// Raw fields survive, enrichment fields stay null, the event is kept.
	if row.EventID != "e1" || row.Actor != "ghost" || row.Type != "PushEvent" {
		t.Errorf("raw fields lost: %+v", row)
	}
	if row.Country != nil || row.Company != nil || row.Latitude != nil {
		t.Errorf("expected null enrichment fields, got %+v", row)
	}
}

func TestEnricher_NoGeocodeWithoutLocation(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{
		"bob": {Login: "bob", Company: strptr("Initech")},
	}}
	geos := &fakeGeocoder{}

	e := testEnricher(profiles, geos)
	row := e.Enrich(context.Background(), rawEvent("e2", "bob"))

	if geos.calls != 0 {
		t.Errorf("expected no geocode call for locationless profile, got %d", geos.calls)
	}
	if row.Company == nil || *row.Company != "Initech" {
		t.Errorf("expected company Initech, got %v", row.Company)
	}
}

func TestEnricher_NegativeGeocodeCacheSharedAcrossEvents(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{
		"a1": {Login: "a1", Location: strptr("San Francisco, CA")},
		"a2": {Login: "a2", Location: strptr("san francisco, ca")},
		"a3": {Login: "a3", Location: strptr("  San Francisco, CA ")},
	}}
	geos := &fakeGeocoder{} // always fails

	e := testEnricher(profiles, geos)
	for i, actor := range []string{"a1", "a2", "a3"} {
		e.Enrich(context.Background(), rawEvent(fmt.Sprintf("e%d", i+1), actor))
	}

	// Three events referencing the same bad location in rapid succession
	// consume exactly one geocode call within the negative TTL.
	if geos.calls != 1 {
		t.Errorf("expected 1 geocode call, got %d", geos.calls)
	}
}
