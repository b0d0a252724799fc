// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/octoscope/octoscope/internal/logging"
)

// response is the envelope for every JSON endpoint.
type response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body *response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, &response{Status: "error", Error: msg})
}

// Health reports overall pipeline health: degraded when either the
// database or the event log stream is unreachable.
func (router *Router) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := router.store != nil && router.store.Ping(r.Context()) == nil

	streamConnected := false
	if router.stream != nil {
		_, err := router.stream.GetStreamInfo(r.Context())
		streamConnected = err == nil
	}

	status := "healthy"
	if !dbConnected || !streamConnected {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &response{
		Status: "success",
		Data: map[string]interface{}{
			"status":             status,
			"database_connected": dbConnected,
			"stream_connected":   streamConnected,
			"uptime_seconds":     time.Since(router.startTime).Seconds(),
		},
	})
}

// HealthLive is the liveness probe: 200 whenever the process runs.
func (router *Router) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &response{
		Status: "success",
		Data:   map[string]interface{}{"alive": true},
	})
}

// HealthReady is the readiness probe: 200 only when the database
// accepts queries.
func (router *Router) HealthReady(w http.ResponseWriter, r *http.Request) {
	if router.store == nil || router.store.Ping(r.Context()) != nil {
		respondJSON(w, http.StatusServiceUnavailable, &response{
			Status: "error",
			Data:   map[string]interface{}{"ready": false},
		})
		return
	}
	respondJSON(w, http.StatusOK, &response{
		Status: "success",
		Data:   map[string]interface{}{"ready": true},
	})
}

// Stats returns stored event totals and, when available, stream depth.
func (router *Router) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := router.store.CountEvents(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count events")
		return
	}

	data := map[string]interface{}{"events_stored": count}
	if router.stream != nil {
		if info, err := router.stream.GetStreamInfo(r.Context()); err == nil {
			data["stream_messages"] = info.State.Msgs
			data["stream_bytes"] = info.State.Bytes
		}
	}

	respondJSON(w, http.StatusOK, &response{Status: "success", Data: data})
}

// HourlyRollups returns events_hourly rows for a time range. Defaults
// to the trailing 24 hours when from/to are absent.
func (router *Router) HourlyRollups(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		to = t
	}
	if !from.Before(to) {
		respondError(w, http.StatusBadRequest, "from must precede to")
		return
	}

	buckets, err := router.store.GetHourlyRollups(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query rollups")
		return
	}

	type bucket struct {
		Bucket     time.Time `json:"bucket"`
		EventType  string    `json:"event_type"`
		EventCount int64     `json:"event_count"`
		ActorCount int64     `json:"actor_count"`
	}
	out := make([]bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucket{b.Bucket, b.EventType, b.EventCount, b.ActorCount})
	}

	respondJSON(w, http.StatusOK, &response{Status: "success", Data: out})
}
