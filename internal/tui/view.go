package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/feedlog/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = m.viewToday()
	case StateWeek:
		content = m.viewWeek()
	case StateConfirmReset:
		content = docStyle.Render(m.form.View())
	}

	footer := m.status
	if m.err != nil {
		footer = dangerStyle.Render("Error: " + m.err.Error())
	} else if footer != "" {
		footer = statusStyle.Render(footer)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		footer,
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Today", "Week"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	cal := m.svc.Calendar()
	window := cal.Current()

	style := countStyle
	if m.summary.Count > m.summary.Limit {
		style = overLimitStyle
	}
	count := style.Render(fmt.Sprintf("%d / %d", m.summary.Count, m.summary.Limit))

	latest := "none yet"
	if m.summary.Latest != nil {
		latest = *m.summary.Latest
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		mutedStyle.Render(fmt.Sprintf("Day of %s (since %s)", window.Key(), window.Start.Format(constants.DateTimeFormat))),
		"",
		"Feedings  "+count,
		"Latest    "+latest,
	))
}

func (m Model) viewWeek() string {
	cal := m.svc.Calendar()
	end := cal.AddDays(m.weekStart, constants.ReportDays-1)
	title := mutedStyle.Render(fmt.Sprintf("%s to %s", cal.DayKey(m.weekStart), cal.DayKey(end)))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.grid.View()))
}
