// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package dedup

import (
	"sync"
	"time"

	"github.com/octoscope/octoscope/internal/metrics"
)

// Window is a bounded, time-windowed set of seen event identifiers.
//
// The producer is the sole writer, but Seen/Mark are safe for concurrent
// use so the sweeper and any stats readers never race with it.
type Window struct {
	mu        sync.RWMutex
	seen      map[string]time.Time
	retention time.Duration

	sweepInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once

	// now is swappable for tests.
	now func() time.Time
}

// New creates a dedup window with the given retention horizon and starts
// the background sweeper.
func New(retention, sweepInterval time.Duration) *Window {
	w := &Window{
		seen:          make(map[string]time.Time),
		retention:     retention,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
		now:           time.Now,
	}

	go w.sweepLoop()

	return w
}

// Seen reports whether the id was marked within the retention horizon.
// An entry older than the horizon is evicted lazily and reported as unseen.
func (w *Window) Seen(id string) bool {
	w.mu.RLock()
	markedAt, ok := w.seen[id]
	w.mu.RUnlock()

	if !ok {
		return false
	}

	if w.now().Sub(markedAt) > w.retention {
		w.mu.Lock()
		delete(w.seen, id)
		w.mu.Unlock()
		return false
	}

	return true
}

// Mark records the id as published at the given time.
// The producer calls this only after the log acknowledged the publish, so
// a failed publish leaves the id unmarked and eligible for retry.
func (w *Window) Mark(id string, t time.Time) {
	w.mu.Lock()
	w.seen[id] = t
	size := len(w.seen)
	w.mu.Unlock()

	metrics.DedupWindowSize.Set(float64(size))
}

// Len returns the current number of tracked ids.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.seen)
}

// Stop terminates the background sweeper. The window remains usable.
func (w *Window) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// sweepLoop periodically removes entries past the retention horizon.
func (w *Window) sweepLoop() {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopCh:
			return
		}
	}
}

// sweep removes all expired entries.
func (w *Window) sweep() {
	cutoff := w.now().Add(-w.retention)

	w.mu.Lock()
	for id, markedAt := range w.seen {
		if markedAt.Before(cutoff) {
			delete(w.seen, id)
		}
	}
	size := len(w.seen)
	w.mu.Unlock()

	metrics.DedupWindowSize.Set(float64(size))
}
