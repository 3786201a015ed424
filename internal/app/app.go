// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/tejashwikalptaru/gotempo/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gotempo/internal/adapter/sink/gomidi"
	"github.com/tejashwikalptaru/gotempo/internal/adapter/source/smf"
	"github.com/tejashwikalptaru/gotempo/internal/adapter/ui/tui"
	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/logger"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
	"github.com/tejashwikalptaru/gotempo/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the command line
type Application struct {
	config Config
	logger *slog.Logger

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	sink     ports.OutputSink
	ownsSink bool

	// Sessions
	registry *service.SessionRegistry

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{config: config}

	// Step 1: Create logger
	app.logger = logger.NewLogger(config.loggerConfig())
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().Version),
		slog.Any("config", config))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Open the output sink. A missing default port is not fatal:
	// the scheduler runs armed but unconnected.
	switch {
	case config.TestSink != nil:
		app.sink = config.TestSink
	case config.NoOutput:
		app.logger.Info("running without output")
	default:
		sink, err := gomidi.Open(app.logger.With(slog.String("component", "sink")), config.OutputPort)
		switch {
		case err == nil:
			app.sink = sink
			app.ownsSink = true
		case config.OutputPort == "" && errors.Is(err, domain.ErrPortNotFound):
			app.logger.Warn("no output port available, running unconnected", slog.Any("error", err))
		default:
			return nil, fmt.Errorf("failed to open output: %w", err)
		}
	}

	// Step 4: Create the session registry
	app.registry = service.NewSessionRegistry(
		app.logger.With(slog.String("component", "registry")),
		app.newSession,
	)

	return app, nil
}

// newSession is the registry's session factory.
func (a *Application) newSession(id domain.SessionID) (*service.Session, error) {
	return service.NewSession(a.logger, a.eventBus, a.sink, a.config.sessionConfig(id)), nil
}

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.EventBus { return a.eventBus }

// Registry returns the session registry.
func (a *Application) Registry() *service.SessionRegistry { return a.registry }

// Sink returns the output sink, or nil when running unconnected.
func (a *Application) Sink() ports.OutputSink { return a.sink }

// OpenFile loads a Standard MIDI File into a started session. Opening the
// same file twice returns the session already playing it.
func (a *Application) OpenFile(ctx context.Context, path string) (*service.Session, error) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	if session, ok := a.registry.Lookup(key); ok {
		return session, nil
	}

	seq, info, err := smf.LoadFile(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("file loaded", slog.String("info", info.String()))

	return a.Open(ctx, key, seq)
}

// Open loads source into the session registered for key, creating and
// starting the session first if needed.
func (a *Application) Open(ctx context.Context, key string, source ports.EventSource) (*service.Session, error) {
	session, created, err := a.registry.Open(key)
	if err != nil {
		return nil, err
	}
	if !created {
		return session, nil
	}

	if err := session.Load(key, source); err != nil {
		_ = a.registry.Close(session.ID())
		return nil, err
	}
	if err := session.Start(ctx); err != nil {
		_ = a.registry.Close(session.ID())
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return session, nil
}

// RunHeadless starts playback and blocks until the sequence reaches its end
// or ctx is cancelled. Reports are drained on the calling goroutine.
func (a *Application) RunHeadless(ctx context.Context, session *service.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The end of sequence arrives as a triggered pause report.
	subID := a.eventBus.SubscribeSession(domain.EventTransportPaused, session.ID(), func(domain.BusEvent) {
		cancel()
	})
	defer a.eventBus.Unsubscribe(subID)

	surface := session.Surface()
	surface.Play()

	err := surface.Run(ctx)
	surface.Pause()
	surface.DrainMessages()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunInteractive shows the terminal control surface for session until the
// user quits or ctx is cancelled.
func (a *Application) RunInteractive(ctx context.Context, session *service.Session, title string) error {
	return tui.Run(ctx, session.Surface(), title)
}

// Shutdown gracefully shuts down the application. Calling it again returns
// the first result.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		var errs []error

		// Sessions first so nothing is sent after the port closes
		if err := a.registry.CloseAll(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close sessions: %w", err))
		}

		if a.ownsSink {
			if closer, ok := a.sink.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					errs = append(errs, fmt.Errorf("failed to close output: %w", err))
				}
			}
			midi.CloseDriver()
		}

		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}

		a.shutdownErr = errors.Join(errs...)
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}
