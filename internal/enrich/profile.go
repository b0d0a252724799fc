// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

// ErrNotFound marks a lookup whose subject does not exist upstream.
// It is cached as a negative entry like any other failure.
var ErrNotFound = errors.New("enrich: not found")

// ProfileClient fetches user profiles from the GitHub API.
// The endpoint is treated as unrated: the upstream API's own budget
// applies, shared with the feed poller's token.
type ProfileClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewProfileClient creates a profile lookup client.
func NewProfileClient(baseURL, token string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

// Lookup fetches the profile for a login.
func (c *ProfileClient) Lookup(ctx context.Context, login string) (*models.Profile, error) {
	start := time.Now()
	defer metrics.RecordLookup("profile", start)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+login, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile lookup %s: %w", login, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, fmt.Errorf("profile %s: %w", login, ErrNotFound)
	default:
		return nil, fmt.Errorf("profile lookup %s: unexpected status %d", login, resp.StatusCode)
	}

	var body struct {
		Login       string  `json:"login"`
		Location    *string `json:"location"`
		Company     *string `json:"company"`
		PublicRepos *int    `json:"public_repos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", login, err)
	}

	profile := &models.Profile{
		Login:       body.Login,
		Location:    normalize(body.Location),
		Company:     normalizeCompany(body.Company),
		PublicRepos: body.PublicRepos,
	}

	return profile, nil
}

// normalize trims whitespace and collapses empty strings to nil.
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeCompany additionally strips the @-prefix convention.
func normalizeCompany(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.Trim(strings.TrimSpace(*s), "@ ")
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

const userAgent = "octoscope/1.0"
