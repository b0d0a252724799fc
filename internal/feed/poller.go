// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/metrics"
	"github.com/octoscope/octoscope/internal/models"
)

const userAgent = "octoscope/1.0"

// Poller fetches pages of recent public events on demand.
type Poller struct {
	client    *http.Client
	eventsURL string
	token     string
	maxPages  int
	perPage   int
	logger    zerolog.Logger

	// etag short-circuits unchanged first pages via If-None-Match.
	etag string
}

// NewPoller creates a poller for the configured feed endpoint.
func NewPoller(cfg config.GitHubConfig) *Poller {
	return &Poller{
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		eventsURL: cfg.APIURL + "/events",
		token:     cfg.Token,
		maxPages:  cfg.MaxPages,
		perPage:   cfg.PerPage,
		logger:    logging.With().Str("component", "feed").Logger(),
	}
}

// Fetch retrieves the current window of upstream events in feed order
// (newest-first, as the API returns them). Per-page faults terminate the
// walk but never propagate; the events gathered so far are returned.
func (p *Poller) Fetch(ctx context.Context) []models.RawEvent {
	var events []models.RawEvent

	for page := 1; page <= p.maxPages; page++ {
		pageEvents, done, err := p.fetchPage(ctx, page)
		if err != nil {
			p.logger.Warn().Err(err).Int("page", page).Msg("feed fetch failed")
			break
		}

		events = append(events, pageEvents...)
		if done {
			break
		}
	}

	metrics.EventsFetched.Add(float64(len(events)))
	return events
}

// fetchPage requests a single page. The done flag signals an early stop
// (304 Not Modified or a rate-limit response).
func (p *Poller) fetchPage(ctx context.Context, page int) ([]models.RawEvent, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.eventsURL, nil)
	if err != nil {
		return nil, true, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("per_page", strconv.Itoa(p.perPage))
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	if page == 1 && p.etag != "" {
		req.Header.Set("If-None-Match", p.etag)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.RecordFetchError("network")
		return nil, true, fmt.Errorf("request events page %d: %w", page, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotModified:
		p.logger.Debug().Int("page", page).Msg("feed not modified")
		return nil, true, nil

	case resp.StatusCode == http.StatusForbidden:
		// Upstream rate limit. Surface the reset horizon for operators but
		// never sleep here: the tick scheduler owns pacing.
		metrics.RecordFetchError("rate_limited")
		reset := resp.Header.Get("X-RateLimit-Reset")
		p.logger.Warn().
			Str("ratelimit_reset", reset).
			Bool("authenticated", p.token != "").
			Msg("feed rate limited, set GITHUB_TOKEN to raise the ceiling")
		return nil, true, nil

	case resp.StatusCode != http.StatusOK:
		metrics.RecordFetchError("status")
		return nil, true, fmt.Errorf("events page %d: unexpected status %d", page, resp.StatusCode)
	}

	if page == 1 {
		p.etag = resp.Header.Get("ETag")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetchError("network")
		return nil, true, fmt.Errorf("read events page %d: %w", page, err)
	}

	var events []models.RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		metrics.RecordFetchError("decode")
		return nil, true, fmt.Errorf("decode events page %d: %w", page, err)
	}

	// A short page means the feed window ended.
	done := len(events) < p.perPage
	return events, done, nil
}

// SetHTTPClient replaces the HTTP client. Used by tests.
func (p *Poller) SetHTTPClient(c *http.Client) {
	p.client = c
}

// ResetETag clears the cached ETag so the next fetch is unconditional.
func (p *Poller) ResetETag() {
	p.etag = ""
}
