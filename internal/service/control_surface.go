package service

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// Icon is the play/pause button glyph the surface shows.
type Icon int

const (
	// IconPlay is shown while paused
	IconPlay Icon = iota
	// IconPause is shown while playing
	IconPause
)

// String returns a glyph for the icon.
func (i Icon) String() string {
	if i == IconPause {
		return "⏸"
	}
	return "▶"
}

// SurfaceConfig configures a ControlSurface.
type SurfaceConfig struct {
	Tempo domain.TempoConfig

	// Step is the normalized delta applied by Back and Forward
	Step float64
}

// DefaultSurfaceConfig returns the default tempo dial and a 10% step.
func DefaultSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		Tempo: domain.DefaultTempoConfig(),
		Step:  0.10,
	}
}

// SurfaceState is the display state of a control surface.
type SurfaceState struct {
	Playing    bool
	Position   float64 // normalized 0.0 to 1.0
	Tempo      float64
	TempoLabel string
	Icon       Icon
	Duration   float64 // seconds
}

// ControlSurface is the interactive front of a scheduler.
//
// User intents update the display state immediately and, when they are
// meant to act, notify the listener and send a command to the connected
// scheduler. Reports coming back from the scheduler arrive through
// SendMessage and are applied on the interactive goroutine by DrainMessages
// or Run; they correct the display and only reach the listener.
//
// Thread-safety: SendMessage may be called from any goroutine. Everything
// else belongs to the interactive goroutine; State is safe to call anywhere.
type ControlSurface struct {
	logger   *slog.Logger
	cfg      SurfaceConfig
	listener ports.TransportListener
	printer  *message.Printer

	inbox *CommandQueue

	mu     sync.Mutex
	state  SurfaceState
	target ports.MessageSender
}

// NewControlSurface creates a paused surface at position 0 and the initial
// tempo. listener may be nil.
func NewControlSurface(logger *slog.Logger, cfg SurfaceConfig, listener ports.TransportListener) *ControlSurface {
	if cfg.Step <= 0 || cfg.Step > 1 {
		cfg.Step = DefaultSurfaceConfig().Step
	}

	s := &ControlSurface{
		logger:   logger,
		cfg:      cfg,
		listener: listener,
		printer:  message.NewPrinter(language.English),
	}
	s.inbox = NewCommandQueue(s.applyReport)

	tempo := cfg.Tempo.Clamp(cfg.Tempo.Initial)
	s.state = SurfaceState{
		Tempo:      tempo,
		TempoLabel: s.formatTempo(tempo),
		Icon:       IconPlay,
	}
	return s
}

// Connect sets the scheduler that receives the surface's commands.
func (s *ControlSurface) Connect(target ports.MessageSender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = target
}

// SetDuration records the sequence duration used to map normalized
// positions to seconds.
func (s *ControlSurface) SetDuration(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Duration = math.Max(0, seconds)
}

// State returns a copy of the display state.
func (s *ControlSurface) State() SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Play starts playback.
func (s *ControlSurface) Play() { s.SetPlaying(true) }

// Pause pauses playback.
func (s *ControlSurface) Pause() { s.SetPausing(true) }

// TogglePlayPause acts like the combined play/pause button.
func (s *ControlSurface) TogglePlayPause() {
	if s.State().Playing {
		s.Pause()
		return
	}
	s.Play()
}

// Seek moves to a normalized position.
func (s *ControlSurface) Seek(position float64) {
	s.SetPlaybackPosition(position, domain.DirectionNone, true)
}

// Rewind moves to the start.
func (s *ControlSurface) Rewind() {
	s.SetPlaybackPosition(0, domain.DirectionNone, true)
}

// Back steps backward by the configured step.
func (s *ControlSurface) Back() {
	s.SetPlaybackPosition(s.State().Position-s.cfg.Step, domain.DirectionBackward, true)
}

// Forward steps forward by the configured step.
func (s *ControlSurface) Forward() {
	s.SetPlaybackPosition(s.State().Position+s.cfg.Step, domain.DirectionForward, true)
}

// GoToEnd moves to the end.
func (s *ControlSurface) GoToEnd() {
	s.SetPlaybackPosition(1, domain.DirectionNone, true)
}

// SetTempo sets an absolute display tempo.
func (s *ControlSurface) SetTempo(tempo float64) {
	s.SetPlaybackTempo(tempo, true)
}

// IncrementTempo moves the tempo by steps increments.
func (s *ControlSurface) IncrementTempo(steps int) {
	inc := s.cfg.Tempo.Increment
	if inc <= 0 {
		inc = 1
	}
	s.SetPlaybackTempo(s.State().Tempo+float64(steps)*inc, true)
}

// SetPlaying marks the surface as playing. The listener is called and the
// scheduler told only if trigger is set and the surface was paused.
// It reports whether the state toggled.
func (s *ControlSurface) SetPlaying(trigger bool) bool {
	return s.setPlaying(trigger, true)
}

// SetPausing marks the surface as paused. The listener is called and the
// scheduler told only if trigger is set and the surface was playing.
// It reports whether the state toggled.
func (s *ControlSurface) SetPausing(trigger bool) bool {
	return s.setPausing(trigger, true)
}

// SetPlaybackPosition sets the normalized position, clamped to [0, 1].
func (s *ControlSurface) SetPlaybackPosition(position float64, dir domain.Direction, trigger bool) {
	s.setPosition(position, dir, trigger, true)
}

// SetPlaybackTempo sets the display tempo, snapped and clamped to the dial.
func (s *ControlSurface) SetPlaybackTempo(tempo float64, trigger bool) {
	s.setTempo(tempo, trigger, true)
}

func (s *ControlSurface) setPlaying(trigger, forward bool) bool {
	s.mu.Lock()
	toggled := !s.state.Playing
	s.state.Playing = true
	s.state.Icon = IconPause
	position := s.state.Position
	s.mu.Unlock()

	if trigger && toggled {
		if s.listener != nil {
			s.listener.OnPlay(position)
		}
		if forward {
			s.send(domain.NewCommand(domain.CommandSetPlaying, 0, 0, true))
		}
	}
	return toggled
}

func (s *ControlSurface) setPausing(trigger, forward bool) bool {
	s.mu.Lock()
	toggled := s.state.Playing
	s.state.Playing = false
	s.state.Icon = IconPlay
	s.mu.Unlock()

	if trigger && toggled {
		if s.listener != nil {
			s.listener.OnPause()
		}
		if forward {
			s.send(domain.NewCommand(domain.CommandSetPausing, 0, 0, true))
		}
	}
	return toggled
}

func (s *ControlSurface) setPosition(position float64, dir domain.Direction, trigger, forward bool) {
	if math.IsNaN(position) {
		return
	}
	position = math.Max(0, math.Min(1, position))

	s.mu.Lock()
	s.state.Position = position
	playing := s.state.Playing
	seconds := position * s.state.Duration
	s.mu.Unlock()

	if !trigger {
		return
	}
	if s.listener != nil {
		s.listener.OnPositionChanged(position, playing, dir)
	}
	if forward {
		s.send(domain.NewCommand(domain.CommandSetPosition, seconds, int(dir), true))
	}
}

func (s *ControlSurface) setTempo(tempo float64, trigger, forward bool) {
	if math.IsNaN(tempo) {
		return
	}
	tempo = s.cfg.Tempo.Clamp(tempo)

	s.mu.Lock()
	s.state.Tempo = tempo
	s.state.TempoLabel = s.formatTempo(tempo)
	playing := s.state.Playing
	s.mu.Unlock()

	if !trigger {
		return
	}
	if s.listener != nil {
		s.listener.OnTempoChanged(tempo, playing)
	}
	if forward {
		s.send(domain.NewCommand(domain.CommandSetTempo, s.cfg.Tempo.Ratio(tempo), 0, true))
	}
}

func (s *ControlSurface) send(cmd domain.Command) {
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()

	if target == nil {
		s.logger.Debug("surface not connected, dropping command", slog.String("command", cmd.String()))
		return
	}
	target.SendMessage(cmd)
}

func (s *ControlSurface) formatTempo(tempo float64) string {
	return s.printer.Sprint(number.Decimal(tempo, number.Scale(s.cfg.Tempo.Decimals))) + s.cfg.Tempo.Suffix
}

// SendMessage queues a command for the interactive goroutine. It is the
// thread-safe counterpart of the direct setters; Value is a normalized
// position for SetPosition and a display tempo for SetTempo.
func (s *ControlSurface) SendMessage(cmd domain.Command) {
	s.inbox.Enqueue(cmd)
}

// Wake fires when messages are waiting to be drained.
func (s *ControlSurface) Wake() <-chan struct{} {
	return s.inbox.Wake()
}

// DrainMessages applies queued messages in arrival order and returns how
// many were applied. Call it from the interactive goroutine.
func (s *ControlSurface) DrainMessages() int {
	return s.inbox.DrainAndApply()
}

// Run drains messages whenever they arrive until ctx is cancelled.
func (s *ControlSurface) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.inbox.Wake():
			s.DrainMessages()
		}
	}
}

// applyReport applies one inbound message. The listener sees triggered
// messages; nothing is echoed back to the scheduler.
func (s *ControlSurface) applyReport(cmd domain.Command) {
	switch cmd.Kind {
	case domain.CommandSetPlaying:
		s.setPlaying(cmd.Trigger, false)
	case domain.CommandSetPausing:
		s.setPausing(cmd.Trigger, false)
	case domain.CommandSetPosition:
		s.setPosition(cmd.Value, domain.Direction(cmd.Int), cmd.Trigger, false)
	case domain.CommandSetTempo:
		s.setTempo(cmd.Value, cmd.Trigger, false)
	default:
		s.logger.Warn("unknown surface message", slog.String("command", cmd.String()))
	}
}

var _ ports.MessageSender = (*ControlSurface)(nil)
