package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/feedlog/internal/constants"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.grid.SetSize(msg.Width-4, msg.Height-6)

	case summaryMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.summary = msg.summary

	case timelineMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// ignore results for a week the user already navigated away from
		if msg.start.Equal(m.weekStart) {
			m.err = nil
			m.grid.SetTimeline(msg.timeline, m.svc.Options().UnderfedThreshold)
		}

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = msg.status
		return m.refresh()

	case tea.KeyMsg:
		if m.state == StateConfirmReset {
			return m.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
		case key.Matches(msg, m.keys.Feed):
			return m, m.feed()
		case key.Matches(msg, m.keys.Reset):
			m.previousState = m.state
			m.state = StateConfirmReset
			m.form = m.newResetForm()
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Refresh):
			return m.refresh()
		case key.Matches(msg, m.keys.PrevWeek):
			m.weekStart = m.svc.Calendar().AddDays(m.weekStart, -constants.ReportDays)
			m.followCurrent = false
			return m, m.loadWeek()
		case key.Matches(msg, m.keys.NextWeek):
			m.weekStart = m.svc.Calendar().AddDays(m.weekStart, constants.ReportDays)
			if current, err := m.svc.RangeStart(""); err == nil {
				m.followCurrent = m.weekStart.Equal(current)
			}
			return m, m.loadWeek()
		case key.Matches(msg, m.keys.ThisWeek):
			m.weekStart, _ = m.svc.RangeStart("")
			m.followCurrent = true
			return m, m.loadWeek()
		default:
			if m.state == StateWeek {
				var cmd tea.Cmd
				m.grid, cmd = m.grid.Update(msg)
				return m, cmd
			}
		}

	default:
		if m.state == StateConfirmReset {
			return m.updateConfirm(msg)
		}
	}

	return m, nil
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		m.form = nil
		if *m.confirmReset {
			return m, m.reset()
		}
		m.status = "Reset cancelled"
		return m, nil
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
		m.status = "Reset cancelled"
		return m, nil
	}
	return m, cmd
}
