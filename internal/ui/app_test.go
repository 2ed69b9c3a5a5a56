package ui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/matchday/internal/game"
	"github.com/five82/matchday/internal/prefs"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)

func newTestModel(t *testing.T, opts Options) (Model, *game.Store) {
	t.Helper()
	store := game.New([]game.Task{
		{ID: "teeth-am", Title: "Brush teeth", Points: 5, Category: game.CategoryHygiene, TimeOfDay: game.Morning},
		{ID: "bins", Title: "Take out bins", Points: 15, Category: game.CategoryCleaning, TimeOfDay: game.Anytime},
	})
	opts.Store = store
	opts.Now = func() time.Time { return fixedNow }
	if opts.Period == "" {
		opts.Period = "all"
	}
	m := New(opts)
	m.ready, m.width, m.height = true, 120, 40
	return m, store
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_ToggleSelectedTask(t *testing.T) {
	m, store := newTestModel(t, Options{})

	m = press(t, m, "j", "space")
	st := store.Snapshot()
	if !st.Tasks[1].Completed || st.Points != 15 {
		t.Fatalf("after toggling bins: tasks %v points %d", st.Tasks, st.Points)
	}
	if m.snapshot.Points != 15 {
		t.Fatalf("model snapshot points = %d, want 15", m.snapshot.Points)
	}

	m = press(t, m, "space")
	if store.Snapshot().Points != 0 {
		t.Fatalf("second toggle did not undo completion")
	}
}

func TestModel_CursorIsClamped(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = press(t, m, "j", "j", "j", "j")
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m = press(t, m, "k", "k", "k")
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
}

func TestModel_ClaimReward(t *testing.T) {
	m, store := newTestModel(t, Options{})

	m = press(t, m, "c")
	if store.Snapshot().Trophies != 0 || m.status == "" {
		t.Fatalf("claim with 0 points: trophies %d status %q", store.Snapshot().Trophies, m.status)
	}

	m = press(t, m, "space", "j", "space", "c")
	st := store.Snapshot()
	if st.Trophies != 1 || st.Points != 0 {
		t.Fatalf("claim with 20 points: trophies %d points %d, want 1 0", st.Trophies, st.Points)
	}
}

func TestModel_SeizureLogging(t *testing.T) {
	m, store := newTestModel(t, Options{})
	m = press(t, m, "+", "+", "-")
	if got := store.Snapshot().SeizuresOn(game.Day(fixedNow)); got != 1 {
		t.Fatalf("seizures today = %d, want 1", got)
	}
	press(t, m, "-", "-")
	if got := store.Snapshot().SeizuresOn(game.Day(fixedNow)); got != 0 {
		t.Fatalf("seizures today = %d, want 0", got)
	}
}

func TestModel_ResetNeedsConfirmation(t *testing.T) {
	m, store := newTestModel(t, Options{})
	m = press(t, m, "space")

	m = press(t, m, "r", "j")
	if !store.Snapshot().Tasks[0].Completed {
		t.Fatalf("single r reset the day")
	}

	press(t, m, "r", "r")
	st := store.Snapshot()
	if st.Tasks[0].Completed || st.Points != 0 {
		t.Fatalf("r r did not reset: %#v", st.Tasks)
	}
	if len(st.History) != 1 || st.History[0].Date != game.Day(fixedNow) || st.History[0].Points != 5 {
		t.Fatalf("History = %#v, want one entry for today with 5 points", st.History)
	}
}

func TestModel_SyncDisabledAndResult(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = press(t, m, "s")
	if m.status != "Cloud sync is not configured" {
		t.Fatalf("status = %q", m.status)
	}

	called := false
	m, _ = newTestModel(t, Options{Sync: func(context.Context) error {
		called = true
		return errors.New("offline")
	}})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatalf("sync key returned no command")
	}
	next, _ = next.(Model).Update(cmd())
	if !called {
		t.Fatalf("sync function not called")
	}
	if got := next.(Model).status; got != "Sync failed: offline" {
		t.Fatalf("status = %q", got)
	}
}

func TestModel_ThemeAndPeriodSavedToPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m, _ := newTestModel(t, Options{PrefsPath: path, ThemeName: "Dracula"})

	m = press(t, m, "T", "tab")
	if m.theme.Name != "Slate" || m.period != game.Morning {
		t.Fatalf("theme %q period %q, want Slate morning", m.theme.Name, m.period)
	}
	saved, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.Theme != "Slate" || saved.Period != "morning" {
		t.Fatalf("saved prefs = %#v", saved)
	}
}

func TestModel_StoreChangeRefreshesSnapshot(t *testing.T) {
	m, store := newTestModel(t, Options{})
	store.AddPoints(7)
	next, cmd := m.Update(storeChangedMsg{})
	if next.(Model).snapshot.Points != 7 {
		t.Fatalf("snapshot points = %d, want 7", next.(Model).snapshot.Points)
	}
	if cmd == nil {
		t.Fatalf("storeChangedMsg did not re-arm the watcher")
	}
}

func TestModel_ViewRenders(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if out := m.View(); out == "" || out == "Loading..." {
		t.Fatalf("View() = %q", out)
	}
	m = press(t, m, "?")
	if !m.showHelp || m.View() == "" {
		t.Fatalf("help overlay not shown")
	}
}
