package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/five82/matchday/internal/fixtures"
	"github.com/five82/matchday/internal/prefs"
	"github.com/five82/matchday/internal/ui"
	"github.com/five82/matchday/internal/weather"
)

// Options configure the matchday application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/matchday/prefs.toml
	Offline    bool   // skip cloud sync even when sync_url is set
	LogStderr  bool   // keep log output on stderr instead of the log file

	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

const (
	fixtureCacheKey = "football_api_"
	weatherCacheKey = "weather_"
)

// Run boots the matchday TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	s, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	cfg := s.Config

	// Background work must finish before the session closes.
	runCtx, cancel := context.WithCancel(ctx)
	var bg background
	defer bg.Wait()
	defer cancel()

	var syncer ui.Syncer
	if s.SyncEnabled() {
		syncer = func(ctx context.Context) error {
			return bg.Run(func() error { return s.Sync(ctx) })
		}
		bg.Go(func() {
			if err := s.Sync(runCtx); err != nil {
				log.Printf("sync: initial pull failed: %v", err)
			}
		})
	} else {
		log.Printf("sync: disabled, running offline")
	}

	bg.Go(func() {
		WatchRollover(runCtx, s.Store, s.Day, cfg.RolloverCheck, opts.clock())
	})

	uiOpts := ui.Options{
		Context:   runCtx,
		Store:     s.Store,
		Sync:      syncer,
		Fixtures:  fixtures.NewProvider(cfg.FootballAPIKey, s.DB.Cache(fixtureCacheKey, cfg.FixtureCacheTTL)),
		Weather:   weather.NewProvider(cfg.WeatherAPIKey, cfg.WeatherCity, cfg.WeatherCountry, s.DB.Cache(weatherCacheKey, cfg.WeatherCacheTTL)),
		ThemeName: userPrefs.Theme,
		Period:    userPrefs.Period,
		PrefsPath: opts.PrefsPath,
		Now:       opts.Now,
	}
	if uiOpts.PrefsPath == "" {
		uiOpts.PrefsPath = prefs.DefaultPath()
	}
	return ui.Run(uiOpts)
}

// background tracks goroutines that touch the session. Once Wait has been
// called it refuses new work, so nothing outlives Close.
type background struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (b *background) add() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.wg.Add(1)
	return true
}

// Go runs fn in a new goroutine and reports whether it was started.
func (b *background) Go(fn func()) bool {
	if !b.add() {
		return false
	}
	go func() {
		defer b.wg.Done()
		fn()
	}()
	return true
}

// Run calls fn on the current goroutine, counted like Go. After Wait it
// returns context.Canceled without calling fn.
func (b *background) Run(fn func() error) error {
	if !b.add() {
		return context.Canceled
	}
	defer b.wg.Done()
	return fn()
}

// Wait stops accepting work and blocks until running work returns.
func (b *background) Wait() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
