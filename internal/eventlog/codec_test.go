// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package eventlog

import (
	"testing"
	"time"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/models"
)

func TestCodec_RejectsInvalidEvent(t *testing.T) {
	c := NewCodec()

	if _, err := c.Marshal(&models.RawEvent{Type: "PushEvent"}); err == nil {
		t.Error("expected error for event without id")
	}
}

func TestCodec_RoundTripPreservesPayload(t *testing.T) {
	c := NewCodec()
	event := &models.RawEvent{
		ID:        "e1",
		Type:      "PushEvent",
		Actor:     models.Actor{ID: 7, Login: "alice"},
		Repo:      models.Repo{Name: "octo/repo"},
		Payload:   []byte(`{"commits":[{"sha":"abc"}]}`),
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := c.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := c.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if decoded.ID != "e1" || decoded.Actor.Login != "alice" {
		t.Errorf("identity fields lost: %+v", decoded)
	}
	if string(decoded.Payload) != string(event.Payload) {
		t.Errorf("payload mangled: %s", decoded.Payload)
	}
	if !decoded.CreatedAt.Equal(event.CreatedAt) {
		t.Errorf("timestamp drift: %v", decoded.CreatedAt)
	}
}

func TestCodec_UnmarshalRejectsGarbage(t *testing.T) {
	if _, err := NewCodec().Unmarshal([]byte("not json")); err == nil {
		t.Error("expected error for undecodable payload")
	}
}

func TestStreamConfigFromApp(t *testing.T) {
	app := config.NATSConfig{
		StreamName:      "GITHUB_EVENTS",
		Subject:         "github.events.raw",
		MaxAge:          48 * time.Hour,
		MaxBytes:        512 << 20,
		DuplicateWindow: 2 * time.Minute,
	}

	cfg := StreamConfigFromApp(app)
	if cfg.Name != "GITHUB_EVENTS" {
		t.Errorf("unexpected stream name %q", cfg.Name)
	}
	if len(cfg.Subjects) != 1 || cfg.Subjects[0] != "github.events.raw" {
		t.Errorf("unexpected subjects %v", cfg.Subjects)
	}
	if cfg.DuplicateWindow != 2*time.Minute {
		t.Errorf("unexpected duplicate window %v", cfg.DuplicateWindow)
	}
}
