// Package grid renders a weekly timeline as an hour-slot by day table.
package grid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/feedlog/internal/models"
)

const cellWidth = 7

var (
	hourStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(cellWidth)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(cellWidth)

	underfedHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("203"))

	markStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Width(cellWidth)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("237")).
			Width(cellWidth)
)

type Model struct {
	viewport  viewport.Model
	timeline  *models.Timeline
	underfed  map[string]bool
	slotLabel func(int) int
}

// New builds an empty grid. slotHour maps a slot back to its wall-clock hour.
func New(width, height int, slotHour func(int) int) Model {
	return Model{
		viewport:  viewport.New(width, height),
		underfed:  map[string]bool{},
		slotLabel: slotHour,
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.timeline == nil {
		return "Loading week..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetTimeline replaces the grid data. Days with fewer than threshold
// feedings get a highlighted header.
func (m *Model) SetTimeline(tl models.Timeline, threshold int) {
	m.timeline = &tl
	m.underfed = map[string]bool{}
	for _, d := range tl.Days {
		if d.Count < threshold {
			m.underfed[d.Date] = true
		}
	}
	m.Render()
}

func (m *Model) Render() {
	if m.timeline == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(Table(*m.timeline, m.underfed, m.slotLabel))
}

// Table draws the grid as plain rows: a header of day labels followed by one
// row per slot and a totals row.
func Table(tl models.Timeline, underfed map[string]bool, slotHour func(int) int) string {
	var b strings.Builder

	header := []string{hourStyle.Render("")}
	for _, d := range tl.Days {
		label := dayLabel(d.Date)
		if underfed[d.Date] {
			header = append(header, underfedHeaderStyle.Render(label))
		} else {
			header = append(header, headerStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for _, slot := range tl.Slots {
		row := []string{hourStyle.Render(fmt.Sprintf("%02d:00", slotHour(slot)))}
		for _, d := range tl.Days {
			if n := len(d.Slots[slot]); n > 0 {
				row = append(row, markStyle.Render(strings.Repeat("●", min(n, cellWidth-1))))
			} else {
				row = append(row, emptyStyle.Render("·"))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	totals := []string{hourStyle.Render("total")}
	for _, d := range tl.Days {
		totals = append(totals, headerStyle.Render(fmt.Sprintf("%d", d.Count)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, totals...))
	return b.String()
}

// dayLabel shortens YYYY-MM-DD to MM-DD.
func dayLabel(date string) string {
	if len(date) == len("2006-01-02") {
		return date[5:]
	}
	return date
}
