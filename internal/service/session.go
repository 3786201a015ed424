package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	ID              domain.SessionID
	Scheduler       SchedulerOptions
	Surface         SurfaceConfig
	TeardownTimeout time.Duration
	Clock           ports.Clock
}

// Session owns exactly one Scheduler and one ControlSurface and ties their
// lifetimes to Start and Stop.
type Session struct {
	logger *slog.Logger
	bus    ports.EventBus
	cfg    SessionConfig

	scheduler *Scheduler
	surface   *ControlSurface

	mu      sync.Mutex
	key     string
	started bool
	stopped bool
}

// NewSession wires a scheduler and a surface. The surface reports to the
// bus; sink may be nil and can be replaced later through Scheduler().SetSink.
func NewSession(logger *slog.Logger, bus ports.EventBus, sink ports.OutputSink, cfg SessionConfig) *Session {
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = 100 * time.Millisecond
	}
	logger = logger.With(slog.String("session", string(cfg.ID)))

	scheduler := NewScheduler(logger.With(slog.String("service", "scheduler")), cfg.Clock, cfg.Scheduler)
	scheduler.SetSink(sink)

	surface := NewControlSurface(logger.With(slog.String("service", "surface")), cfg.Surface, NewBusListener(bus, cfg.ID))
	surface.Connect(scheduler)
	scheduler.SetReporter(surface)

	// Start the scheduler at the surface's tempo.
	scheduler.SetTempo(cfg.Surface.Tempo.Ratio(surface.State().Tempo))

	return &Session{
		logger:    logger,
		bus:       bus,
		cfg:       cfg,
		scheduler: scheduler,
		surface:   surface,
	}
}

// ID returns the session id.
func (s *Session) ID() domain.SessionID { return s.cfg.ID }

// Key returns the key of the loaded sequence.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Scheduler returns the session's scheduler.
func (s *Session) Scheduler() *Scheduler { return s.scheduler }

// Surface returns the session's control surface.
func (s *Session) Surface() *ControlSurface { return s.surface }

// Load pauses and rewinds the transport, then installs source.
// On error the scheduler is left Idle.
func (s *Session) Load(key string, source ports.EventSource) error {
	s.surface.SetPausing(false)
	s.surface.SetPlaybackPosition(0, domain.DirectionNone, false)

	if err := s.scheduler.Load(source); err != nil {
		s.surface.SetDuration(0)
		return err
	}

	s.mu.Lock()
	s.key = key
	s.mu.Unlock()

	s.surface.SetDuration(source.EndTime())
	s.bus.Publish(domain.NewSequenceLoadedEvent(s.cfg.ID, key, source.Len(), source.EndTime()))

	s.logger.Info("sequence loaded",
		slog.String("key", key),
		slog.Int("events", source.Len()),
		slog.Float64("duration", source.EndTime()))
	return nil
}

// Start launches the scheduler.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return domain.ErrAlreadyStarted
	}
	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}
	s.started = true
	return nil
}

// Stop tears the session down within the teardown timeout. Stopping twice
// is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	err := s.scheduler.Stop(s.cfg.TeardownTimeout)
	if errors.Is(err, domain.ErrNotStarted) {
		err = nil
	}
	if err != nil {
		err = domain.NewServiceError("Session", "Stop", "scheduler did not stop", err)
	}

	s.bus.Publish(domain.NewSessionClosedEvent(s.cfg.ID, err))
	s.logger.Debug("session stopped", slog.Any("error", err))
	return err
}
