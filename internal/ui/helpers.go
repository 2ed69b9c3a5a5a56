package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/five82/matchday/internal/fixtures"
	"github.com/five82/matchday/internal/game"
)

// periodAll shows every session at once.
const periodAll game.TimeOfDay = ""

var periodCycle = []game.TimeOfDay{periodAll, game.Morning, game.Afternoon, game.Evening, game.Anytime}

// periodForHour picks the session that matches the clock.
func periodForHour(hour int) game.TimeOfDay {
	switch {
	case hour < 12:
		return game.Morning
	case hour < 17:
		return game.Afternoon
	default:
		return game.Evening
	}
}

// parsePeriod resolves a saved preference. "auto" follows the clock.
func parsePeriod(value string, now time.Time) game.TimeOfDay {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "", "all":
		return periodAll
	case "auto":
		return periodForHour(now.Hour())
	default:
		for _, p := range game.TimesOfDay {
			if string(p) == v {
				return p
			}
		}
		return periodAll
	}
}

func stepPeriod(current game.TimeOfDay, delta int) game.TimeOfDay {
	idx := 0
	for i, p := range periodCycle {
		if p == current {
			idx = i
			break
		}
	}
	n := len(periodCycle)
	return periodCycle[((idx+delta)%n+n)%n]
}

func periodLabel(p game.TimeOfDay) string {
	switch p {
	case periodAll:
		return "All"
	case game.Morning:
		return "Morning"
	case game.Afternoon:
		return "Afternoon"
	case game.Evening:
		return "Evening"
	case game.Anytime:
		return "Anytime"
	default:
		return string(p)
	}
}

// visibleTasks returns the tasks shown for a session, grouped in display
// order when every session is shown.
func visibleTasks(st game.State, period game.TimeOfDay) []game.Task {
	if period != periodAll {
		return st.TasksFor(period)
	}
	out := make([]game.Task, 0, len(st.Tasks))
	for _, p := range game.TimesOfDay {
		out = append(out, st.TasksFor(p)...)
	}
	return out
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// progressBar renders a fixed-width bar like "█████░░░░░".
func progressBar(done, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

func scoreline(m fixtures.Match) string {
	if m.HomeScore == nil || m.AwayScore == nil {
		return "v"
	}
	return fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore)
}

func kickoffLabel(kickoff, now time.Time) string {
	local := kickoff.Local()
	switch game.Day(local) {
	case game.Day(now):
		return "Today " + local.Format("15:04")
	case game.Day(now.AddDate(0, 0, 1)):
		return "Tomorrow " + local.Format("15:04")
	default:
		return local.Format("Mon 2 Jan 15:04")
	}
}

// upcomingEvents returns calendar events dated today or later, in date order.
func upcomingEvents(events []game.CalendarEvent, today string, limit int) []game.CalendarEvent {
	var out []game.CalendarEvent
	for _, e := range events {
		if e.Date >= today {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b game.CalendarEvent) int {
		return strings.Compare(a.Date, b.Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
