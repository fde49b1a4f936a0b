// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/feedlog/internal/constants"
	"github.com/julianstephens/feedlog/internal/feeding"
	"github.com/julianstephens/feedlog/internal/models"
	"github.com/julianstephens/feedlog/internal/tui/components/grid"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateWeek
	StateConfirmReset
)

const tabCount = 2

const requestTimeout = 5 * time.Second

type Model struct {
	svc           *feeding.Service
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	grid          grid.Model
	form          *huh.Form
	confirmReset  *bool

	summary   models.Summary
	weekStart time.Time
	// followCurrent keeps weekStart on the week ending today until the user
	// navigates away.
	followCurrent bool
	err       error
	status    string

	quitting bool
	width    int
	height   int
}

func NewModel(svc *feeding.Service) Model {
	start, _ := svc.RangeStart("")
	return Model{
		svc:       svc,
		state:     StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		grid:      grid.New(0, 0, svc.Calendar().SlotHour),
		weekStart: start,

		followCurrent: true,
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(svc *feeding.Service) error {
	_, err := tea.NewProgram(NewModel(svc), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadToday(), m.loadWeek())
}

type summaryMsg struct {
	summary models.Summary
	err     error
}

type timelineMsg struct {
	start    time.Time
	timeline models.Timeline
	err      error
}

type actionMsg struct {
	status string
	err    error
}

func (m Model) loadToday() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := svc.Today(ctx)
		return summaryMsg{summary: s, err: err}
	}
}

// refresh reloads both views, moving weekStart forward when the custom day
// has rolled over and the user is still on the current week.
func (m Model) refresh() (Model, tea.Cmd) {
	if m.followCurrent {
		if start, err := m.svc.RangeStart(""); err == nil {
			m.weekStart = start
		}
	}
	return m, tea.Batch(m.loadToday(), m.loadWeek())
}

func (m Model) loadWeek() tea.Cmd {
	svc, start := m.svc, m.weekStart
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tl, err := svc.Timeline(ctx, svc.Calendar().DayKey(start))
		return timelineMsg{start: start, timeline: tl, err: err}
	}
}

func (m Model) feed() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := svc.Append(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		latest := ""
		if res.Latest != nil {
			latest = *res.Latest
		}
		return actionMsg{status: constants.MsgFeedingRecorded + " at " + latest}
	}
}

func (m Model) reset() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := svc.ResetToday(ctx)
		return actionMsg{status: res.Message, err: err}
	}
}

func (m *Model) newResetForm() *huh.Form {
	confirm := false
	m.confirmReset = &confirm
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset today's feedings?").
				Description("Every feeding since the start of the current day will be deleted.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(m.confirmReset),
		),
	).WithShowHelp(false)
}
