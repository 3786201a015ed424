// Package tui is the terminal presenter for a control surface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tejashwikalptaru/gotempo/internal/service"
)

const barWidth = 40

// Model renders a ControlSurface and turns keys into transport intents.
// The bubbletea goroutine is the surface's interactive goroutine: reports
// from the scheduler are drained in Update, never elsewhere.
type Model struct {
	surface  *service.ControlSurface
	title    string
	quitting bool
}

// ReportMsg tells the model that scheduler reports are waiting.
type ReportMsg struct{}

// NewModel creates a model for surface. title is shown above the transport.
func NewModel(surface *service.ControlSurface, title string) Model {
	return Model{surface: surface, title: title}
}

// ListenForReports blocks until the surface has messages to drain.
func ListenForReports(surface *service.ControlSurface) tea.Cmd {
	return func() tea.Msg {
		<-surface.Wake()
		return ReportMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForReports(m.surface)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.surface.Pause()
			return m, tea.Quit

		case " ", "space", "p":
			m.surface.TogglePlayPause()

		case "left", "h":
			m.surface.Back()

		case "right", "l":
			m.surface.Forward()

		case "home", "0":
			m.surface.Rewind()

		case "end", "$":
			m.surface.GoToEnd()

		case "+", "=", "up":
			m.surface.IncrementTempo(1)

		case "-", "_", "down":
			m.surface.IncrementTempo(-1)
		}

	case ReportMsg:
		m.surface.DrainMessages()
		return m, ListenForReports(m.surface)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	state := m.surface.State()

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	filled := int(math.Round(state.Position * barWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := state.Position * state.Duration
	transport := fmt.Sprintf("%s  %s  %s / %s  %s",
		state.Icon, barStyle.Render(bar), clockTime(elapsed), clockTime(state.Duration), state.TempoLabel)

	help := dimStyle.Render("space:play/pause  ←/→:step  home/end:rewind/end  +/-:tempo  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.title))
	out.WriteString("\n\n")
	out.WriteString(transport)
	out.WriteString("\n\n")
	out.WriteString(help)
	out.WriteString("\n")
	return out.String()
}

func clockTime(seconds float64) string {
	total := int(math.Max(0, seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Run drives the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, surface *service.ControlSurface, title string) error {
	program := tea.NewProgram(NewModel(surface, title), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
