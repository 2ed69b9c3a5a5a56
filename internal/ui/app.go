package ui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/matchday/internal/fixtures"
	"github.com/five82/matchday/internal/game"
	"github.com/five82/matchday/internal/prefs"
	"github.com/five82/matchday/internal/weather"
)

// FixtureSource supplies upcoming matches.
type FixtureSource interface {
	Upcoming(ctx context.Context) ([]fixtures.Match, error)
}

// WeatherSource supplies the current pitch report. A nil report hides the panel.
type WeatherSource interface {
	Current(ctx context.Context) (*weather.Report, error)
}

// Syncer pulls the cloud document into the store.
type Syncer func(ctx context.Context) error

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *game.Store
	Sync      Syncer // nil when sync is disabled
	Fixtures  FixtureSource
	Weather   WeatherSource
	ThemeName string
	Period    string
	PrefsPath string
	Now       func() time.Time
	Tick      time.Duration
}

const (
	defaultTick     = 30 * time.Second
	externalRefresh = 30 * time.Minute
	statusLifetime  = 5 * time.Second
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     *game.Store
	sync      Syncer
	fixtures  FixtureSource
	weather   WeatherSource
	prefsPath string
	now       func() time.Time
	tick      time.Duration
	keys      keyMap
	changes   chan struct{}

	// UI state
	theme        Theme
	period       game.TimeOfDay
	periodPref   string
	cursor       int
	width        int
	height       int
	ready        bool
	showHelp     bool
	confirmReset bool
	status       string
	statusAt     time.Time

	// Data state
	snapshot     game.State
	matches      []fixtures.Match
	report       *weather.Report
	lastExternal time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}
	periodPref := opts.Period
	if periodPref == "" {
		periodPref = prefs.Defaults().Period
	}

	m := Model{
		ctx:        ctx,
		store:      opts.Store,
		sync:       opts.Sync,
		fixtures:   opts.Fixtures,
		weather:    opts.Weather,
		prefsPath:  opts.PrefsPath,
		now:        now,
		tick:       tick,
		keys:       DefaultKeyMap(),
		changes:    make(chan struct{}, 1),
		theme:      GetTheme(themeName),
		period:     parsePeriod(periodPref, now()),
		periodPref: periodPref,

		lastExternal: now(),
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		waitForChange(m.changes),
		m.refreshExternal(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case storeChangedMsg:
		m.refreshSnapshot()
		return m, waitForChange(m.changes)

	case tickMsg:
		m.refreshSnapshot()
		if !m.statusAt.IsZero() && time.Time(msg).Sub(m.statusAt) >= statusLifetime {
			m.status = ""
		}
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.now().Sub(m.lastExternal) >= externalRefresh {
			cmds = append(cmds, m.refreshExternal())
			m.lastExternal = m.now()
		}
		return m, tea.Batch(cmds...)

	case fixturesMsg:
		if msg.err != nil {
			log.Printf("ui: fixtures unavailable: %v", msg.err)
			return m, nil
		}
		m.matches = msg.matches
		return m, nil

	case weatherMsg:
		if msg.err != nil {
			log.Printf("ui: weather unavailable: %v", msg.err)
			return m, nil
		}
		m.report = msg.report
		return m, nil

	case syncDoneMsg:
		m.refreshSnapshot()
		switch {
		case msg.err == nil:
			m.setStatus("Synced with the cloud")
		case errors.Is(msg.err, game.ErrSyncInProgress):
			m.setStatus("Sync already running")
		default:
			m.setStatus("Sync failed: " + msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.confirmReset {
		m.confirmReset = false
		if key.Matches(msg, m.keys.Reset) {
			if m.store != nil {
				m.store.ResetDailyTasks(game.Day(m.now()))
			}
			m.refreshSnapshot()
			m.setStatus("New matchday: tasks reset")
			return m, nil
		}
		m.status = ""
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.NextPeriod):
		m.setPeriod(stepPeriod(m.period, 1))

	case key.Matches(msg, m.keys.PrevPeriod):
		m.setPeriod(stepPeriod(m.period, -1))

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(0, len(visibleTasks(m.snapshot, m.period))-1)

	case key.Matches(msg, m.keys.Toggle):
		if task, ok := m.selectedTask(); ok && m.store != nil {
			m.store.ToggleTask(task.ID)
			m.refreshSnapshot()
		}

	case key.Matches(msg, m.keys.SeizureUp):
		m.logSeizure(1)

	case key.Matches(msg, m.keys.SeizureDown):
		m.logSeizure(-1)

	case key.Matches(msg, m.keys.Claim):
		if m.store != nil && m.store.ClaimReward() {
			m.refreshSnapshot()
			m.setStatus("Trophy lifted!")
		} else {
			m.setStatus("Need 20 points for a trophy")
		}

	case key.Matches(msg, m.keys.Sync):
		if m.sync == nil {
			m.setStatus("Cloud sync is not configured")
			return m, nil
		}
		m.setStatus("Syncing...")
		return m, syncCmd(m.ctx, m.sync)

	case key.Matches(msg, m.keys.Reset):
		m.confirmReset = true
		m.setStatus("Press r again to reset today's tasks")
	}

	return m, nil
}

func (m *Model) refreshSnapshot() {
	if m.store == nil {
		return
	}
	m.snapshot = m.store.Snapshot()
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(visibleTasks(m.snapshot, m.period))
	m.cursor = max(0, min(m.cursor, n-1))
}

func (m Model) selectedTask() (game.Task, bool) {
	tasks := visibleTasks(m.snapshot, m.period)
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return game.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) setPeriod(p game.TimeOfDay) {
	m.period = p
	m.periodPref = string(p)
	if p == periodAll {
		m.periodPref = "all"
	}
	m.cursor = 0
	m.clampCursor()
	m.savePrefs()
}

func (m *Model) logSeizure(delta int) {
	if m.store == nil {
		return
	}
	if m.store.LogSeizure(delta, game.Day(m.now())) {
		m.refreshSnapshot()
	}
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusAt = m.now()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Period: m.periodPref}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Printf("ui: save prefs: %v", err)
	}
}

func (m Model) refreshExternal() tea.Cmd {
	var cmds []tea.Cmd
	if m.fixtures != nil {
		cmds = append(cmds, fetchFixturesCmd(m.ctx, m.fixtures))
	}
	if m.weather != nil {
		cmds = append(cmds, fetchWeatherCmd(m.ctx, m.weather))
	}
	return tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type storeChangedMsg struct{}

type fixturesMsg struct {
	matches []fixtures.Match
	err     error
}

type weatherMsg struct {
	report *weather.Report
	err    error
}

type syncDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func fetchFixturesCmd(ctx context.Context, src FixtureSource) tea.Cmd {
	return func() tea.Msg {
		matches, err := src.Upcoming(ctx)
		return fixturesMsg{matches: matches, err: err}
	}
}

func fetchWeatherCmd(ctx context.Context, src WeatherSource) tea.Cmd {
	return func() tea.Msg {
		report, err := src.Current(ctx)
		return weatherMsg{report: report, err: err}
	}
}

func syncCmd(ctx context.Context, sync Syncer) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{err: sync(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	if m.store != nil {
		// Listeners run under the store lock; only signal here.
		unsubscribe := m.store.Subscribe(func(game.State) {
			select {
			case m.changes <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
