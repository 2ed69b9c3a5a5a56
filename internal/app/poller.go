package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/matchday/internal/game"
)

const defaultRolloverCheck = time.Minute

// resetter is the part of game.Store the rollover logic needs.
type resetter interface {
	ResetDailyTasks(day string)
}

// rolloverWatcher resets the daily tasks once the local date moves on.
type rolloverWatcher struct {
	store resetter
	now   func() time.Time
	day   string
}

// newRolloverWatcher starts from day, or from the current date when day is empty.
func newRolloverWatcher(store resetter, day string, now func() time.Time) *rolloverWatcher {
	if now == nil {
		now = time.Now
	}
	if day == "" {
		day = game.Day(now())
	}
	return &rolloverWatcher{store: store, now: now, day: day}
}

// check archives the day that ended when the date has changed since the
// last call and reports whether it did.
func (w *rolloverWatcher) check() bool {
	today := game.Day(w.now())
	if today == w.day {
		return false
	}
	ended := w.day
	w.day = today
	log.Printf("app: day rolled over from %s to %s, resetting tasks", ended, today)
	w.store.ResetDailyTasks(ended)
	return true
}

// WatchRollover checks the local date at a fixed cadence and resets the
// daily tasks when it moves past day. It blocks until ctx is cancelled.
func WatchRollover(ctx context.Context, store resetter, day string, interval time.Duration, now func() time.Time) {
	if interval <= 0 {
		interval = defaultRolloverCheck
	}
	w := newRolloverWatcher(store, day, now)
	// Catch a date change between Open and the first tick.
	w.check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}
