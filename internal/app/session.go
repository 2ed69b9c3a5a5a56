package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/matchday/internal/catalog"
	"github.com/five82/matchday/internal/cloud"
	"github.com/five82/matchday/internal/config"
	"github.com/five82/matchday/internal/game"
	"github.com/five82/matchday/internal/persist"
)

const shutdownTimeout = 10 * time.Second

// Session is an opened data directory: the restored store with persistence
// and, when configured, cloud push attached.
type Session struct {
	Config config.Config
	DB     *persist.DB
	Store  *game.Store

	// Day is the local date the store holds tasks for.
	Day string

	now      func() time.Time
	client   *cloud.Client
	pusher   *cloud.Pusher
	untrack  func()
	detach   func()
	closeLog func()
}

// Open loads the config, opens the database and restores the saved state.
// A snapshot saved on an earlier day is archived and reset before Open
// returns. Unless opts.LogStderr is set the standard logger writes to the
// log file until Close. The caller must Close the session.
func Open(opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	closeLog := func() {}
	if !opts.LogStderr {
		closeLog, err = redirectLog(cfg.LogPath())
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	}

	db, err := persist.Open(cfg.DatabasePath())
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open database: %w", err)
	}
	now := opts.clock()
	db.SetClock(now)

	store, savedAt, err := loadStore(db)
	if err != nil {
		_ = db.Close()
		closeLog()
		return nil, err
	}

	s := &Session{Config: cfg, DB: db, Store: store, now: now, closeLog: closeLog}
	s.untrack = persist.Track(store, db)
	s.Day = catchUp(store, savedAt, now())

	if cfg.SyncEnabled() && !opts.Offline {
		client, err := cloud.NewClient(cfg.SyncURL)
		if err != nil {
			s.untrack()
			_ = db.Close()
			closeLog()
			return nil, fmt.Errorf("init sync client: %w", err)
		}
		s.client = client
		s.pusher = cloud.NewPusher(client, cfg.PushDelay)
		s.detach = cloud.Attach(store, s.pusher)
	}
	return s, nil
}

// SyncEnabled reports whether the session talks to the cloud.
func (s *Session) SyncEnabled() bool {
	return s.client != nil
}

// Sync pulls the cloud document into the store.
func (s *Session) Sync(ctx context.Context) error {
	if s.client == nil {
		return cloud.ErrDisabled
	}
	return syncNow(ctx, s.Store, s.client, s.now())
}

// Push sends any pending change now instead of after the quiet period.
func (s *Session) Push(ctx context.Context) error {
	if s.pusher == nil {
		return cloud.ErrDisabled
	}
	return s.pusher.Flush(ctx)
}

// Close flushes a pending push with a bounded timeout, stops saving and
// closes the database.
func (s *Session) Close() error {
	if s.pusher != nil {
		s.detach()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.pusher.Flush(ctx); err != nil && !errors.Is(err, cloud.ErrDisabled) {
			log.Printf("sync: final push failed: %v", err)
		}
		cancel()
		s.pusher.Stop()
	}
	s.untrack()
	err := s.DB.Close()
	s.closeLog()
	return err
}

// loadStore builds the store from the catalog and restores the saved
// snapshot. savedAt is zero when nothing was saved.
func loadStore(db *persist.DB) (*game.Store, time.Time, error) {
	store := game.New(catalog.Tasks())
	saved, savedAt, ok, err := db.LoadState()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load saved state: %w", err)
	}
	if !ok {
		return store, time.Time{}, nil
	}
	store.Restore(saved)
	return store, savedAt, nil
}

// catchUp resets the tasks when the snapshot was saved on an earlier local
// date, archiving the points under that date. It returns today's date.
func catchUp(store resetter, savedAt, now time.Time) string {
	today := game.Day(now)
	if savedAt.IsZero() {
		return today
	}
	saved := game.Day(savedAt.In(now.Location()))
	if saved < today {
		log.Printf("app: state was saved on %s, resetting tasks for %s", saved, today)
		store.ResetDailyTasks(saved)
	}
	return today
}

// redirectLog sends the standard logger to path while the session is open.
// The returned function restores stderr and closes the file.
func redirectLog(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// calendarSource is the part of cloud.Gateway syncNow needs beyond Pull.
type calendarSource interface {
	game.Puller
	FetchCalendar(ctx context.Context) ([]game.CalendarEvent, error)
}

// recordingPuller keeps the last pulled document so syncNow can inspect it
// after the merge.
type recordingPuller struct {
	game.Puller
	snap *game.CloudSnapshot
}

func (r *recordingPuller) Pull(ctx context.Context) (*game.CloudSnapshot, error) {
	snap, err := r.Puller.Pull(ctx)
	r.snap = snap
	return snap, err
}

// syncNow pulls the cloud document into the store. When the document has no
// calendar field the dedicated calendar action is tried instead.
func syncNow(ctx context.Context, store *game.Store, gw calendarSource, now time.Time) error {
	rec := &recordingPuller{Puller: gw}
	if err := store.SyncFromCloud(ctx, rec, now); err != nil {
		return err
	}
	if rec.snap == nil || rec.snap.CalendarEvents != nil {
		return nil
	}
	events, err := gw.FetchCalendar(ctx)
	if err != nil {
		log.Printf("sync: calendar fetch failed: %v", err)
		return nil
	}
	store.SetCalendarEvents(events)
	return nil
}
