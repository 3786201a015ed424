package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValid(t *testing.T) {
	assert.True(t, Event{Time: 1, Payload: []byte{0x90, 60, 100}}.Valid())
	assert.False(t, Event{Time: 1}.Valid())
	assert.False(t, Event{Time: math.NaN(), Payload: []byte{0x90}}.Valid())
	assert.False(t, Event{Time: math.Inf(1), Payload: []byte{0x90}}.Valid())
}

func TestTempoConfigClamp(t *testing.T) {
	cfg := DefaultTempoConfig()

	assert.Equal(t, 60.0, cfg.Clamp(60.4))
	assert.Equal(t, 61.0, cfg.Clamp(60.6))
	assert.Equal(t, 40.0, cfg.Clamp(-5))
	assert.Equal(t, 208.0, cfg.Clamp(1000))

	cfg.Increment = 0
	assert.Equal(t, 60.4, cfg.Clamp(60.4))
}

func TestTempoConfigRatio(t *testing.T) {
	cfg := DefaultTempoConfig()
	assert.Equal(t, 1.0, cfg.Ratio(60))
	assert.Equal(t, 2.0, cfg.Ratio(120))

	state := TempoState{Ratio: 1.5, Origin: 60}
	assert.Equal(t, 90.0, state.Tempo())
}

func TestTempoConfigValidate(t *testing.T) {
	require.NoError(t, DefaultTempoConfig().Validate())

	cfg := DefaultTempoConfig()
	cfg.Origin = 0
	err := cfg.Validate()

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "tempo.origin", validationErr.Field)
}

func TestRunStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "unknown", RunState(9).String())
}

func TestCommandString(t *testing.T) {
	cmd := NewCommand(CommandSetPosition, 1.5, -1, true)
	cmd.Seq = 7
	assert.Equal(t, "#7 SetPosition(1.5, -1, true)", cmd.String())
	assert.Equal(t, "CommandKind(9)", CommandKind(9).String())
}

func TestErrorWrapping(t *testing.T) {
	svcErr := NewServiceError("Scheduler", "Load", "empty", ErrEmptySequence)
	wrapped := fmt.Errorf("load: %w", svcErr)

	assert.True(t, errors.Is(wrapped, ErrEmptySequence))
	var target *ServiceError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "Load", target.Op)

	srcErr := NewSourceError("read", "song.mid", errors.New("eof"))
	assert.Contains(t, srcErr.Error(), "song.mid")

	sinkErr := &SinkError{Port: "IAC", Err: ErrPortNotFound}
	assert.ErrorIs(t, sinkErr, ErrPortNotFound)
}
