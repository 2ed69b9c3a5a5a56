package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/matchday/internal/game"
)

const (
	sidebarWidth = 38
	barWidth     = 20
	maxFixtures  = 4
	maxEvents    = 3
)

func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	bodyHeight = max(bodyHeight, 3)

	taskWidth := m.width - sidebarWidth - 1
	var body string
	if taskWidth < 30 {
		body = m.renderTasks(m.width, bodyHeight)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTasks(taskWidth, bodyHeight),
			" ",
			m.renderSidebar(sidebarWidth, bodyHeight),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	st := m.snapshot
	done, total := st.Progress()

	logo := styles.Logo.Render("⚽ MATCHDAY")
	points := styles.AccentText.Bold(true).Render(fmt.Sprintf("%d pts", st.Points))
	trophies := styles.WarningText.Render(fmt.Sprintf("🏆 %d", st.Trophies))
	bar := styles.SuccessText.Render(progressBar(done, total, barWidth))
	progress := styles.MutedText.Render(fmt.Sprintf("%d/%d", done, total))
	seizures := styles.MutedText.Render(fmt.Sprintf("seizures today: %d", st.SeizuresOn(game.Day(m.now()))))

	line := strings.Join([]string{logo, points, trophies, bar + " " + progress, seizures, m.syncLabel()}, "  ")
	return styles.Header.Width(m.width).Render(line)
}

func (m Model) syncLabel() string {
	styles := m.theme.Styles()
	st := m.snapshot
	switch {
	case st.IsSyncing:
		return styles.InfoText.Render("syncing…")
	case m.sync == nil:
		return styles.FaintText.Render("offline")
	case st.LastSynced == nil:
		return styles.FaintText.Render("never synced")
	default:
		return styles.MutedText.Render("synced " + humanizeDuration(m.now().Sub(*st.LastSynced)))
	}
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	parts := make([]string, 0, len(periodCycle))
	for _, p := range periodCycle {
		label := periodLabel(p)
		if p == m.period {
			parts = append(parts, styles.Selected.Padding(0, 1).Render(label))
		} else {
			parts = append(parts, styles.MutedText.Padding(0, 1).Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderTasks(width, height int) string {
	styles := m.theme.Styles()
	tasks := visibleTasks(m.snapshot, m.period)

	lines := []string{m.renderTabs(), ""}
	if len(tasks) == 0 {
		lines = append(lines, styles.FaintText.Render("No tasks in this session"))
	}

	// Keep the cursor in view.
	room := max(1, height-len(lines)-2)
	start := 0
	if m.cursor >= room {
		start = m.cursor - room + 1
	}

	var lastPeriod game.TimeOfDay
	for i := start; i < len(tasks) && i < start+room; i++ {
		task := tasks[i]
		if m.period == periodAll && task.TimeOfDay != lastPeriod {
			lastPeriod = task.TimeOfDay
			lines = append(lines, styles.AccentText.Bold(true).Render(periodLabel(task.TimeOfDay)))
		}
		lines = append(lines, m.renderTask(task, i == m.cursor, width-4))
	}

	return styles.Panel.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTask(task game.Task, selected bool, width int) string {
	styles := m.theme.Styles()
	check := "[ ]"
	if task.Completed {
		check = "[✓]"
	}
	pts := fmt.Sprintf("+%d", task.Points)
	title := task.Title
	if task.Emoji != "" {
		title = task.Emoji + " " + title
	}
	title = truncate(title, max(4, width-len(check)-len(pts)-4))

	if selected {
		text := fmt.Sprintf("%s %s", check, title)
		pad := max(1, width-lipgloss.Width(text)-len(pts))
		return styles.Selected.Render(text + strings.Repeat(" ", pad) + pts)
	}

	checkStyle := styles.FaintText
	titleStyle := styles.Text
	if task.Completed {
		checkStyle = styles.SuccessText
		titleStyle = styles.MutedText.Strikethrough(true)
	}
	left := checkStyle.Render(check) + " " + titleStyle.Render(title)
	pad := max(1, width-lipgloss.Width(left)-len(pts))
	return left + strings.Repeat(" ", pad) + styles.CategoryStyle(task.Category).Render(pts)
}

func (m Model) renderSidebar(width, height int) string {
	styles := m.theme.Styles()
	now := m.now()
	inner := width - 4

	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render("Fixtures"))
	b.WriteString("\n")
	if len(m.matches) == 0 {
		b.WriteString(styles.FaintText.Render("Loading fixtures…"))
		b.WriteString("\n")
	}
	for i, match := range m.matches {
		if i == maxFixtures {
			break
		}
		teams := truncate(fmt.Sprintf("%s %s %s", match.HomeTeam, scoreline(match), match.AwayTeam), inner)
		b.WriteString(styles.Text.Render(teams))
		b.WriteString("\n")
		meta := kickoffLabel(match.Kickoff, now)
		if match.Mock {
			meta += " (sample)"
		}
		b.WriteString(styles.StatusStyle(string(match.Status)).Render(string(match.Status)))
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(meta))
		b.WriteString("\n")
	}

	if m.report != nil {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Pitch Report"))
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(fmt.Sprintf("%s %d°C %s", m.report.City, m.report.Temp, m.report.Condition)))
		b.WriteString("\n")
		if m.report.Description != "" {
			b.WriteString(styles.MutedText.Render(truncate(m.report.Description, inner)))
			b.WriteString("\n")
		}
	}

	events := upcomingEvents(m.snapshot.CalendarEvents, game.Day(now), maxEvents)
	if len(events) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Calendar"))
		b.WriteString("\n")
		for _, e := range events {
			when := e.Date
			if !e.IsAllDay && e.StartTime != "" {
				when += " " + e.StartTime
			}
			b.WriteString(styles.MutedText.Render(when))
			b.WriteString(" ")
			b.WriteString(styles.Text.Render(truncate(e.Title, max(4, inner-lipgloss.Width(when)-1))))
			b.WriteString("\n")
		}
	}

	if len(m.snapshot.History) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Recent Results"))
		b.WriteString("\n")
		for _, h := range m.snapshot.History {
			b.WriteString(styles.MutedText.Render(h.Date))
			b.WriteString(" ")
			b.WriteString(styles.Text.Render(fmt.Sprintf("%d pts", h.Points)))
			b.WriteString("\n")
		}
	}

	return styles.Panel.Width(width - 2).Height(height - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.status != "" {
		return styles.Footer.Width(m.width).Render(styles.WarningText.Render(m.status))
	}
	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s %s", h.Key, strings.ToLower(h.Desc)))
	}
	claim := ""
	if m.snapshot.CanClaim() {
		claim = styles.SuccessText.Render("  trophy ready!")
	}
	return styles.Footer.Width(m.width).Render(strings.Join(hints, " · ") + claim)
}
