package app

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingResetter struct {
	mu   sync.Mutex
	days []string
}

func (r *recordingResetter) ResetDailyTasks(day string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days = append(r.days, day)
}

func (r *recordingResetter) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.days...)
}

func TestRolloverWatcher_ResetsWithEndedDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 58, 0, 0, time.Local)
	store := &recordingResetter{}
	w := newRolloverWatcher(store, "", func() time.Time { return now })

	if w.check() {
		t.Fatalf("check() on same day = true, want false")
	}

	now = now.Add(3 * time.Minute)
	if !w.check() {
		t.Fatalf("check() after midnight = false, want true")
	}
	if got := store.calls(); len(got) != 1 || got[0] != "2025-06-01" {
		t.Fatalf("ResetDailyTasks calls = %v, want [2025-06-01]", got)
	}

	if w.check() {
		t.Fatalf("second check() on new day = true, want false")
	}
}

func TestRolloverWatcher_SkippedDaysResetOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	store := &recordingResetter{}
	w := newRolloverWatcher(store, "", func() time.Time { return now })

	now = now.AddDate(0, 0, 3)
	w.check()
	if got := store.calls(); len(got) != 1 || got[0] != "2025-06-01" {
		t.Fatalf("ResetDailyTasks calls = %v, want [2025-06-01]", got)
	}
}

func TestRolloverWatcher_StartsFromGivenDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 30, 0, time.Local)
	store := &recordingResetter{}
	w := newRolloverWatcher(store, "2025-06-01", func() time.Time { return now })

	if !w.check() {
		t.Fatalf("check() with stale start day = false, want true")
	}
	if got := store.calls(); len(got) != 1 || got[0] != "2025-06-01" {
		t.Fatalf("ResetDailyTasks calls = %v, want [2025-06-01]", got)
	}
}

func TestWatchRollover_StopsWithContext(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 23, 59, 0, 0, time.Local)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := &recordingResetter{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		WatchRollover(ctx, store, "2025-06-01", 5*time.Millisecond, clock)
	}()

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for len(store.calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("WatchRollover did not return after cancel")
	}
	if got := store.calls(); len(got) != 1 || got[0] != "2025-06-01" {
		t.Fatalf("ResetDailyTasks calls = %v, want [2025-06-01]", got)
	}
}
