// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package dedup

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestWindow_SeenAfterMark(t *testing.T) {
	w := New(time.Hour, time.Hour)
	defer w.Stop()

	if w.Seen("e1") {
		t.Error("expected e1 unseen before mark")
	}

	w.Mark("e1", time.Now())

	if !w.Seen("e1") {
		t.Error("expected e1 seen after mark")
	}
	if w.Seen("e2") {
		t.Error("expected e2 unseen")
	}
}

func TestWindow_LazyExpiry(t *testing.T) {
	w := New(time.Hour, time.Hour)
	defer w.Stop()

	now := time.Now()
	w.now = func() time.Time { return now }

	w.Mark("e1", now)

	// Advance past the retention horizon
	now = now.Add(2 * time.Hour)

	if w.Seen("e1") {
		t.Error("expected e1 expired after retention horizon")
	}
	if w.Len() != 0 {
		t.Errorf("expected lazy eviction to remove entry, got %d entries", w.Len())
	}
}

func TestWindow_Sweep(t *testing.T) {
	w := New(time.Hour, time.Hour)
	defer w.Stop()

	now := time.Now()
	w.now = func() time.Time { return now }

	w.Mark("old", now.Add(-2*time.Hour))
	w.Mark("fresh", now)

	w.sweep()

	if w.Len() != 1 {
		t.Errorf("expected 1 entry after sweep, got %d", w.Len())
	}
	if !w.Seen("fresh") {
		t.Error("expected fresh entry to survive sweep")
	}
}

func TestWindow_ConcurrentAccess(t *testing.T) {
	w := New(time.Hour, time.Hour)
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("e-%d-%d", n, j)
				if !w.Seen(id) {
					w.Mark(id, time.Now())
				}
			}
		}(i)
	}
	wg.Wait()

	if w.Len() != 1000 {
		t.Errorf("expected 1000 entries, got %d", w.Len())
	}
}
