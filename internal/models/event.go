// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// RawEvent is a single event decoded from the GitHub public events feed.
// It is immutable once fetched: the producer publishes it verbatim and the
// consumer only adds enrichment on top.
type RawEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	// IngestedAt is stamped by the producer at publish time.
	IngestedAt time.Time `json:"ingested_at,omitempty"`
}

// Actor identifies the user that triggered an event.
type Actor struct {
	ID    int64  `json:"id,omitempty"`
	Login string `json:"login"`
}

// Repo identifies the repository an event belongs to.
type Repo struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Validate checks required fields and returns an error if validation fails.
func (e *RawEvent) Validate() error {
	if e.ID == "" {
		return &ValidationError{Field: "id", Message: "required"}
	}
	if e.Type == "" {
		return &ValidationError{Field: "type", Message: "required"}
	}
	if e.Actor.Login == "" {
		return &ValidationError{Field: "actor.login", Message: "required"}
	}
	return nil
}

// PartitionKey returns the key used for per-entity ordering on the log.
// Repository name groups related events; actor login is the fallback for
// events without a repository.
func (e *RawEvent) PartitionKey() string {
	if e.Repo.Name != "" {
		return e.Repo.Name
	}
	return e.Actor.Login
}

// Time returns the event timestamp, falling back to the ingestion time
// for events with a missing or zero created_at.
func (e *RawEvent) Time() time.Time {
	if !e.CreatedAt.IsZero() {
		return e.CreatedAt
	}
	return e.IngestedAt
}

// Detail returns a short human-readable summary of the event payload.
// The set of recognized types mirrors what the dashboards break down by.
func (e *RawEvent) Detail() string {
	var payload struct {
		Action  string            `json:"action"`
		Ref     string            `json:"ref"`
		RefType string            `json:"ref_type"`
		Commits []json.RawMessage `json:"commits"`
		Release struct {
			TagName string `json:"tag_name"`
		} `json:"release"`
	}
	if len(e.Payload) > 0 {
		// Best effort: an undecodable payload yields an empty detail.
		_ = json.Unmarshal(e.Payload, &payload)
	}

	switch e.Type {
	case "PushEvent":
		return fmt.Sprintf("%d commit(s)", len(payload.Commits))
	case "PullRequestEvent", "IssuesEvent":
		return payload.Action
	case "CreateEvent":
		return fmt.Sprintf("%s '%s'", payload.RefType, payload.Ref)
	case "WatchEvent":
		if payload.Action != "" {
			return payload.Action
		}
		return "starred"
	case "ReleaseEvent":
		return "tag " + payload.Release.TagName
	default:
		return ""
	}
}

// ValidationError describes a missing or malformed event field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Message)
}
