// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

// GeocodeClient resolves free-text location strings to coordinates via a
// Nominatim-compatible endpoint. Every call passes the global limiter
// first: the upstream policy is one request per second, process-wide.
type GeocodeClient struct {
	client  *http.Client
	baseURL string
	limiter *Limiter
}

// NewGeocodeClient creates a geocoding client gated by the given limiter.
func NewGeocodeClient(baseURL string, limiter *Limiter, timeout time.Duration) *GeocodeClient {
	return &GeocodeClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: limiter,
	}
}

// Lookup geocodes a location string.
// Blocks on the rate limiter before touching the network.
func (c *GeocodeClient) Lookup(ctx context.Context, location string) (*models.GeoLocation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("await geocode slot: %w", err)
	}
	metrics.GeocodeCalls.Inc()

	start := time.Now()
	defer metrics.RecordLookup("geocode", start)

	q := url.Values{}
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("addressdetails", "1")
	q.Set("extratags", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status %d", location, resp.StatusCode)
	}

	var hits []struct {
		Lat     string `json:"lat"`
		Lon     string `json:"lon"`
		Address struct {
			Country     string `json:"country"`
			CountryCode string `json:"country_code"`
		} `json:"address"`
		ExtraTags struct {
			Timezone string `json:"timezone"`
		} `json:"extratags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode geocode %q: %w", location, err)
	}

	if len(hits) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", location, ErrNotFound)
	}

	h := hits[0]
	geo := &models.GeoLocation{}

	if h.Address.Country != "" {
		geo.Country = &h.Address.Country
	}
	if cc := strings.ToUpper(h.Address.CountryCode); len(cc) >= 2 {
		cc = cc[:2]
		geo.CountryCode = &cc
	}
	if h.ExtraTags.Timezone != "" {
		geo.Timezone = &h.ExtraTags.Timezone
	}
	if lat, err := strconv.ParseFloat(h.Lat, 64); err == nil {
		geo.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(h.Lon, 64); err == nil {
		geo.Longitude = &lon
	}

	return geo, nil
}

// NormalizeLocation canonicalizes a free-text location for cache keying.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
