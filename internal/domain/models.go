// Package domain contains core transport models with no external dependencies.
// This package defines the fundamental entities of the gotempo playback engine.
package domain

import (
	"fmt"
	"math"
)

// Event is a single time-stamped message held by an event source.
type Event struct {
	// Time is the event timestamp in seconds at unit tempo
	Time float64

	// Payload is the raw message delivered to the output sink
	Payload []byte
}

// Valid reports whether the event can be delivered.
// Events with an empty payload or a non-finite timestamp are malformed.
func (e Event) Valid() bool {
	if len(e.Payload) == 0 {
		return false
	}
	return !math.IsNaN(e.Time) && !math.IsInf(e.Time, 0)
}

// PlaybackPosition is the scheduler's view of where playback is.
type PlaybackPosition struct {
	// Time is seconds elapsed since playback start at unit tempo
	Time float64

	// Index is the next unscanned event offset in the event source
	Index int

	// Length is the total event count at the time of the last (re)load
	Length int
}

// TempoState holds the playback-rate multiplier used by the scheduler.
type TempoState struct {
	// Ratio multiplies elapsed wall-clock time; always > 0 when used for scheduling
	Ratio float64

	// Minimum and Maximum bound the display tempo on the control surface
	Minimum float64
	Maximum float64

	// Origin is the display tempo that corresponds to Ratio 1.0
	Origin float64
}

// Tempo returns the display tempo for the current ratio.
func (t TempoState) Tempo() float64 {
	return t.Ratio * t.Origin
}

// TempoConfig configures the tempo control of a control surface.
// Defaults mirror a metronome-style BPM dial.
type TempoConfig struct {
	Initial   float64 `yaml:"initial"`
	Minimum   float64 `yaml:"minimum"`
	Maximum   float64 `yaml:"maximum"`
	Increment float64 `yaml:"increment"`
	MidPoint  float64 `yaml:"midpoint"`
	Origin    float64 `yaml:"origin"`
	Suffix    string  `yaml:"suffix"`
	Decimals  int     `yaml:"decimals"`
}

// DefaultTempoConfig returns a 60 BPM dial ranging from 40 to 208 BPM.
func DefaultTempoConfig() TempoConfig {
	return TempoConfig{
		Initial:   60.0,
		Minimum:   40.0,
		Maximum:   208.0,
		Increment: 1.0,
		MidPoint:  92.0,
		Origin:    60.0,
		Suffix:    " BPM",
		Decimals:  0,
	}
}

// Validate checks the tempo bounds.
func (c TempoConfig) Validate() error {
	if c.Minimum <= 0 || c.Maximum <= 0 {
		return NewValidationError("tempo.minimum", c.Minimum, "tempo bounds must be positive")
	}
	if c.Minimum > c.Maximum {
		return NewValidationError("tempo.maximum", c.Maximum, fmt.Sprintf("maximum must not be below minimum %v", c.Minimum))
	}
	if c.Initial < c.Minimum || c.Initial > c.Maximum {
		return NewValidationError("tempo.initial", c.Initial, "initial tempo must lie within bounds")
	}
	if c.Origin <= 0 {
		return NewValidationError("tempo.origin", c.Origin, "origin tempo must be positive")
	}
	if c.Increment < 0 {
		return NewValidationError("tempo.increment", c.Increment, "increment must not be negative")
	}
	if c.Decimals < 0 || c.Decimals > 6 {
		return NewValidationError("tempo.decimals", c.Decimals, "decimals must be between 0 and 6")
	}
	return nil
}

// Clamp snaps a tempo to the configured increment and bounds.
func (c TempoConfig) Clamp(tempo float64) float64 {
	if c.Increment > 0 {
		steps := math.Round((tempo - c.Minimum) / c.Increment)
		tempo = c.Minimum + steps*c.Increment
	}
	return math.Max(c.Minimum, math.Min(c.Maximum, tempo))
}

// Ratio converts a display tempo to a scheduler rate multiplier.
func (c TempoConfig) Ratio(tempo float64) float64 {
	return tempo / c.Origin
}

// RunState is the scheduler's run state.
type RunState int

const (
	// StateIdle indicates no sequence is loaded
	StateIdle RunState = iota

	// StatePaused indicates a sequence is loaded and the clock is frozen
	StatePaused

	// StatePlaying indicates the clock is advancing
	StatePlaying
)

// String returns a human-readable representation of the run state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Direction tells which way a positional control moved.
type Direction int

const (
	DirectionBackward Direction = -1
	DirectionNone     Direction = 0
	DirectionForward  Direction = 1
)

// SessionID uniquely identifies a playback session.
type SessionID string
