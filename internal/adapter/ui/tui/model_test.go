package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/logger"
	"github.com/tejashwikalptaru/gotempo/internal/service"
)

// commandRecorder stands in for the scheduler.
type commandRecorder struct {
	cmds []domain.Command
}

func (r *commandRecorder) SendMessage(cmd domain.Command) {
	r.cmds = append(r.cmds, cmd)
}

func newTestModel() (Model, *service.ControlSurface, *commandRecorder) {
	surface := service.NewControlSurface(logger.NewTestLogger(), service.DefaultSurfaceConfig(), nil)
	rec := &commandRecorder{}
	surface.Connect(rec)
	surface.SetDuration(125)
	return NewModel(surface, "song.mid"), surface, rec
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_TogglePlayPause(t *testing.T) {
	m, surface, rec := newTestModel()

	m, _ = press(m, runes("p"))
	assert.True(t, surface.State().Playing)

	_, _ = press(m, runes("p"))
	assert.False(t, surface.State().Playing)

	require.Len(t, rec.cmds, 2)
	assert.Equal(t, domain.CommandSetPlaying, rec.cmds[0].Kind)
	assert.Equal(t, domain.CommandSetPausing, rec.cmds[1].Kind)
}

func TestModel_PositionKeys(t *testing.T) {
	m, surface, _ := newTestModel()

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.InDelta(t, 0.2, surface.State().Position, 1e-9)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.InDelta(t, 0.1, surface.State().Position, 1e-9)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 1.0, surface.State().Position)

	_, _ = press(m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0.0, surface.State().Position)
}

func TestModel_TempoKeys(t *testing.T) {
	m, surface, rec := newTestModel()

	m, _ = press(m, runes("+"))
	m, _ = press(m, runes("+"))
	_, _ = press(m, runes("-"))

	assert.Equal(t, 61.0, surface.State().Tempo)
	require.Len(t, rec.cmds, 3)
	assert.InDelta(t, 61.0/60.0, rec.cmds[2].Value, 1e-9)
}

func TestModel_ReportMsgDrainsSurface(t *testing.T) {
	m, surface, _ := newTestModel()

	surface.SendMessage(domain.NewCommand(domain.CommandSetPosition, 0.5, 0, false))
	_, cmd := press(m, ReportMsg{})

	assert.Equal(t, 0.5, surface.State().Position)
	assert.NotNil(t, cmd)
}

func TestModel_ListenForReportsReturnsAfterWake(t *testing.T) {
	_, surface, _ := newTestModel()

	surface.SendMessage(domain.NewCommand(domain.CommandSetPlaying, 0, 0, false))
	msg := ListenForReports(surface)()

	assert.IsType(t, ReportMsg{}, msg)
}

func TestModel_Quit(t *testing.T) {
	m, surface, _ := newTestModel()
	m, _ = press(m, runes("p"))
	require.True(t, surface.State().Playing)

	m, cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, surface.State().Playing)
	assert.Empty(t, m.View())
}

func TestModel_View(t *testing.T) {
	m, surface, _ := newTestModel()
	surface.SetPlaybackPosition(0.5, domain.DirectionNone, false)

	view := m.View()
	assert.Contains(t, view, "song.mid")
	assert.Contains(t, view, "60 BPM")
	assert.Contains(t, view, "1:02 / 2:05")
	assert.Contains(t, view, "q:quit")
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "0:00", clockTime(-3))
	assert.Equal(t, "0:59", clockTime(59.9))
	assert.Equal(t, "1:05", clockTime(65))
}
