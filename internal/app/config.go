package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/logger"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
	"github.com/tejashwikalptaru/gotempo/internal/service"
)

// Config holds application configuration.
//
// Every field with a yaml tag can be set from a config file; see LoadConfig.
type Config struct {
	// TickInterval is the scheduler polling interval
	TickInterval time.Duration `yaml:"tick_interval"`

	// ReportEvery is the number of playing ticks between position reports
	ReportEvery int `yaml:"report_every"`

	// TeardownTimeout bounds how long a session may take to stop
	TeardownTimeout time.Duration `yaml:"teardown_timeout"`

	// Step is the normalized delta of the back and forward buttons
	Step float64 `yaml:"step"`

	// OutputPort selects the MIDI output by name or index (empty for the first port)
	OutputPort string `yaml:"output_port"`

	// NoOutput runs without an output sink
	NoOutput bool `yaml:"no_output"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format"`

	// Tempo configures the tempo dial of the control surface
	Tempo domain.TempoConfig `yaml:"tempo"`

	// LogOutput overrides where logs go (nil for stderr)
	LogOutput io.Writer `yaml:"-"`

	// TestSink replaces the MIDI output for testing (nil for production)
	TestSink ports.OutputSink `yaml:"-"`

	// TestClock replaces the wall clock for testing (nil for production)
	TestClock ports.Clock `yaml:"-"`
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	scheduler := service.DefaultSchedulerOptions()
	surface := service.DefaultSurfaceConfig()

	return Config{
		TickInterval:    scheduler.TickInterval,
		ReportEvery:     scheduler.ReportEvery,
		TeardownTimeout: 100 * time.Millisecond,
		Step:            surface.Step,
		LogLevel:        loggerCfg.Level.String(),
		LogFormat:       loggerCfg.Format,
		Tempo:           surface.Tempo,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig and validates
// the result. Keys missing from the file keep their defaults; unknown keys
// are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return domain.NewValidationError("tick_interval", c.TickInterval, "must be positive")
	}
	if c.ReportEvery < 1 {
		return domain.NewValidationError("report_every", c.ReportEvery, "must be at least 1")
	}
	if c.TeardownTimeout <= 0 {
		return domain.NewValidationError("teardown_timeout", c.TeardownTimeout, "must be positive")
	}
	if c.Step <= 0 || c.Step > 1 {
		return domain.NewValidationError("step", c.Step, "must be in (0, 1]")
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return domain.NewValidationError("log_level", c.LogLevel, "unknown level")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return domain.NewValidationError("log_format", c.LogFormat, `must be "text" or "json"`)
	}
	if err := c.Tempo.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidTempoBounds, err)
	}
	return nil
}

// loggerConfig converts the logging fields.
func (c Config) loggerConfig() logger.Config {
	level, _ := logger.ParseLevel(c.LogLevel)
	return logger.Config{
		Level:  level,
		Format: c.LogFormat,
		Output: c.LogOutput,
	}
}

// sessionConfig converts the engine fields for a session with the given id.
func (c Config) sessionConfig(id domain.SessionID) service.SessionConfig {
	scheduler := service.DefaultSchedulerOptions()
	scheduler.TickInterval = c.TickInterval
	scheduler.ReportEvery = c.ReportEvery
	scheduler.InitialRatio = c.Tempo.Ratio(c.Tempo.Clamp(c.Tempo.Initial))

	return service.SessionConfig{
		ID:        id,
		Scheduler: scheduler,
		Surface: service.SurfaceConfig{
			Tempo: c.Tempo,
			Step:  c.Step,
		},
		TeardownTimeout: c.TeardownTimeout,
		Clock:           c.TestClock,
	}
}

// LogValue lets the config be logged as a group.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("tick_interval", c.TickInterval),
		slog.Int("report_every", c.ReportEvery),
		slog.Duration("teardown_timeout", c.TeardownTimeout),
		slog.Float64("step", c.Step),
		slog.String("output_port", c.OutputPort),
		slog.Bool("no_output", c.NoOutput),
		slog.Float64("tempo", c.Tempo.Initial),
	)
}
