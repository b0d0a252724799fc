// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package producer

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/octoscope/octoscope/internal/dedup"
	"github.com/octoscope/octoscope/internal/logging"
	"github.com/octoscope/octoscope/internal/models"
)

type fakeSource struct {
	batches [][]models.RawEvent
	calls   int
}

func (f *fakeSource) Fetch(ctx context.Context) []models.RawEvent {
	if f.calls >= len(f.batches) {
		return nil
	}
	batch := f.batches[f.calls]
	f.calls++
	return batch
}

type fakePublisher struct {
	published []string
	events    []models.RawEvent
	failUntil map[string]int // event ID -> remaining failures
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic string, event *models.RawEvent) error {
	if n := f.failUntil[event.ID]; n > 0 {
		f.failUntil[event.ID] = n - 1
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, event.ID)
	f.events = append(f.events, *event)
	return nil
}

func event(id string) models.RawEvent {
	return models.RawEvent{
		ID:        id,
		Type:      "PushEvent",
		Actor:     models.Actor{Login: "alice"},
		Repo:      models.Repo{Name: "octo/repo"},
		CreatedAt: time.Now().UTC(),
	}
}

func testProducer(source *fakeSource, pub *fakePublisher, window *dedup.Window) *Producer {
	return &Producer{
		source:       source,
		publisher:    pub,
		window:       window,
		topic:        "github.events.raw",
		pollInterval: time.Second,
		retries:      3,
		retryBackoff: time.Millisecond,
		logger:       logging.NewTestLogger(io.Discard),
	}
}

func TestPollOnce_SkipsDuplicatesWithinBatch(t *testing.T) {
	window := dedup.New(time.Hour, time.Hour)
	defer window.Stop()

	source := &fakeSource{batches: [][]models.RawEvent{
		{event("e1"), event("e1"), event("e2")},
	}}
	pub := &fakePublisher{}

	p := testProducer(source, pub, window)
	p.pollOnce(context.Background())

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 publishes, got %v", pub.published)
	}
	if pub.published[0] != "e1" || pub.published[1] != "e2" {
		t.Errorf("unexpected publish order: %v", pub.published)
	}
}

func TestPollOnce_SkipsEventsSeenInEarlierPolls(t *testing.T) {
	window := dedup.New(time.Hour, time.Hour)
	defer window.Stop()

	// Consecutive polls of a rolling feed overlap.
	source := &fakeSource{batches: [][]models.RawEvent{
		{event("e1")},
		{event("e1"), event("e2")},
	}}
	pub := &fakePublisher{}

	p := testProducer(source, pub, window)
	p.pollOnce(context.Background())
	p.pollOnce(context.Background())

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 publishes across polls, got %v", pub.published)
	}
	if pub.published[1] != "e2" {
		t.Errorf("expected only e2 from second poll, got %v", pub.published)
	}
}

func TestPollOnce_StampsIngestionTimeForMissingCreatedAt(t *testing.T) {
	window := dedup.New(time.Hour, time.Hour)
	defer window.Stop()

	// Feed records occasionally arrive without created_at. They must still
	// dedup across polls and carry a usable timestamp onto the log.
	noTimestamp := event("e1")
	noTimestamp.CreatedAt = time.Time{}
	source := &fakeSource{batches: [][]models.RawEvent{
		{noTimestamp},
		{noTimestamp},
	}}
	pub := &fakePublisher{}

	p := testProducer(source, pub, window)
	p.pollOnce(context.Background())
	p.pollOnce(context.Background())

	if len(pub.published) != 1 {
		t.Fatalf("expected a single publish across polls, got %v", pub.published)
	}
	if !window.Seen("e1") {
		t.Error("expected e1 to stay marked seen")
	}
	if pub.events[0].IngestedAt.IsZero() {
		t.Error("expected ingestion timestamp stamped before publish")
	}
	if pub.events[0].Time().IsZero() {
		t.Error("expected a non-zero event time for the storage key")
	}
}

func TestPublishRetrySucceedsWithinBudget(t *testing.T) {
	window := dedup.New(time.Hour, time.Hour)
	defer window.Stop()

	source := &fakeSource{batches: [][]models.RawEvent{{event("e1")}}}
	pub := &fakePublisher{failUntil: map[string]int{"e1": 2}}

	p := testProducer(source, pub, window)
	p.pollOnce(context.Background())

	if len(pub.published) != 1 {
		t.Fatalf("expected publish to succeed on retry, got %v", pub.published)
	}
	if !window.Seen("e1") {
		t.Error("expected e1 marked seen after acknowledged publish")
	}
}

func TestPublishFailureLeavesEventUnmarked(t *testing.T) {
	window := dedup.New(time.Hour, time.Hour)
	defer window.Stop()

	source := &fakeSource{batches: [][]models.RawEvent{
		{event("e1")},
		{event("e1")},
	}}
	pub := &fakePublisher{failUntil: map[string]int{"e1": 3}} // exhausts all retries once

	p := testProducer(source, pub, window)
	p.pollOnce(context.Background())

	if window.Seen("e1") {
		t.Fatal("failed publish must not mark the event seen")
	}

	// The next poll retries the same event and succeeds.
	p.pollOnce(context.Background())
	if len(pub.published) != 1 || pub.published[0] != "e1" {
		t.Errorf("expected e1 published on second poll, got %v", pub.published)
	}
	if !window.Seen("e1") {
		t.Error("expected e1 marked seen after successful retry")
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	window := dedup.New(time.Hour, time.Hour)
	defer window.Stop()

	p := testProducer(&fakeSource{}, &fakePublisher{}, window)
	p.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
