// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/octoscope/octoscope/internal/config"
)

func testConfig(url string) config.GitHubConfig {
	return config.GitHubConfig{
		APIURL:         url,
		PollInterval:   time.Second,
		MaxPages:       3,
		PerPage:        2,
		RequestTimeout: time.Second,
	}
}

func TestPoller_FetchDecodesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			w.Write([]byte(`[]`)) //nolint:errcheck
			return
		}
		w.Header().Set("ETag", `"abc"`)
		//nolint:errcheck
		w.Write([]byte(`[
			{"id":"e1","type":"PushEvent","actor":{"login":"alice"},"repo":{"name":"r/x"},"created_at":"2026-08-29T10:00:00Z","payload":{"commits":[{},{}]}},
			{"id":"e2","type":"WatchEvent","actor":{"login":"bob"},"repo":{"name":"r/y"},"created_at":"2026-08-29T10:00:01Z"}
		]`))
	}))
	defer srv.Close()

	p := NewPoller(testConfig(srv.URL))
	events := p.Fetch(context.Background())

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "e1" || events[0].Actor.Login != "alice" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if got := events[0].Detail(); got != "2 commit(s)" {
		t.Errorf("expected push detail, got %q", got)
	}
	if got := events[1].Detail(); got != "starred" {
		t.Errorf("expected watch detail, got %q", got)
	}
}

func TestPoller_NotModifiedShortCircuits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`[{"id":"e1","type":"PushEvent","actor":{"login":"alice"},"repo":{"name":"r/x"},"created_at":"2026-08-29T10:00:00Z"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewPoller(testConfig(srv.URL))

	first := p.Fetch(context.Background())
	if len(first) != 1 {
		t.Fatalf("expected 1 event on first fetch, got %d", len(first))
	}

	second := p.Fetch(context.Background())
	if len(second) != 0 {
		t.Errorf("expected empty result on 304, got %d events", len(second))
	}
	// First fetch stops after the short page; second stops at the 304.
	if calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", calls)
	}
}

func TestPoller_RateLimitNeverBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", "4102444800")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewPoller(testConfig(srv.URL))

	start := time.Now()
	events := p.Fetch(context.Background())
	elapsed := time.Since(start)

	if len(events) != 0 {
		t.Errorf("expected no events under rate limit, got %d", len(events))
	}
	if elapsed > time.Second {
		t.Errorf("rate-limited fetch blocked for %v", elapsed)
	}
}

func TestPoller_ServerErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPoller(testConfig(srv.URL))
	if events := p.Fetch(context.Background()); len(events) != 0 {
		t.Errorf("expected no events on server error, got %d", len(events))
	}
}

func TestPoller_MalformedPayloadTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewPoller(testConfig(srv.URL))
	if events := p.Fetch(context.Background()); len(events) != 0 {
		t.Errorf("expected no events on malformed payload, got %d", len(events))
	}
}
