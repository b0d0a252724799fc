// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/octoscope/octoscope/internal/storage"
)

type fakeStore struct {
	pingErr error
	count   int64
	buckets []storage.HourlyBucket
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) CountEvents(ctx context.Context) (int64, error) { return f.count, nil }

func (f *fakeStore) GetHourlyRollups(ctx context.Context, from, to time.Time) ([]storage.HourlyBucket, error) {
	return f.buckets, nil
}

type fakeStream struct {
	err  error
	info jetstream.StreamInfo
}

func (f *fakeStream) GetStreamInfo(ctx context.Context) (*jetstream.StreamInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.info, nil
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var body response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealth_DegradedWhenStreamDown(t *testing.T) {
	router := NewRouter(&fakeStore{}, &fakeStream{err: errors.New("no stream")})
	handler := router.Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	data := body.Data.(map[string]interface{})
	if data["status"] != "degraded" {
		t.Errorf("expected degraded, got %v", data["status"])
	}
	if data["database_connected"] != true || data["stream_connected"] != false {
		t.Errorf("unexpected connectivity flags: %v", data)
	}
}

func TestHealthReady_FailsWithoutDatabase(t *testing.T) {
	router := NewRouter(&fakeStore{pingErr: errors.New("closed")}, nil)
	handler := router.Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestStats_IncludesStreamDepth(t *testing.T) {
	stream := &fakeStream{}
	stream.info.State.Msgs = 7
	router := NewRouter(&fakeStore{count: 42}, stream)
	handler := router.Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	body := decodeResponse(t, rec)
	data := body.Data.(map[string]interface{})
	if data["events_stored"] != float64(42) {
		t.Errorf("expected 42 stored events, got %v", data["events_stored"])
	}
	if data["stream_messages"] != float64(7) {
		t.Errorf("expected 7 stream messages, got %v", data["stream_messages"])
	}
}

func TestHourlyRollups_RejectsInvertedRange(t *testing.T) {
	router := NewRouter(&fakeStore{}, nil)
	handler := router.Setup()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/rollups/hourly?from=2026-08-02T00:00:00Z&to=2026-08-01T00:00:00Z", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHourlyRollups_ReturnsBuckets(t *testing.T) {
	bucketTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{buckets: []storage.HourlyBucket{
		{Bucket: bucketTime, EventType: "PushEvent", EventCount: 3, ActorCount: 2},
	}}
	router := NewRouter(store, nil)
	handler := router.Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rollups/hourly", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	rows := body.Data.([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["event_type"] != "PushEvent" || row["event_count"] != float64(3) {
		t.Errorf("unexpected bucket: %v", row)
	}
}
