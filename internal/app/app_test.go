package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tejashwikalptaru/gotempo/internal/adapter/sink/mock"
	"github.com/tejashwikalptaru/gotempo/internal/adapter/source/memory"
	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/testutil"
)

func testConfig(sink *mock.Sink) Config {
	config := DefaultConfig()
	config.TickInterval = time.Millisecond
	config.ReportEvery = 2
	config.LogOutput = io.Discard
	config.TestSink = sink
	return config
}

func shortSequence() *memory.Sequence {
	return memory.NewSequence([]domain.Event{
		{Time: 0, Payload: []byte{0x90, 60, 100}},
		{Time: 0.01, Payload: []byte{0x80, 60, 0}},
		{Time: 0.02, Payload: []byte{0x90, 62, 100}},
	})
}

func TestNewApplication(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	sink := mock.NewSink()
	app, err := NewApplication(testConfig(sink))
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.EventBus())
	assert.NotNil(t, app.Registry())
	assert.Equal(t, sink, app.Sink())

	assert.NoError(t, app.Shutdown())
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	config := testConfig(mock.NewSink())
	config.TickInterval = 0

	_, err := NewApplication(config)
	assert.Error(t, err)
}

func TestNewApplication_NoOutput(t *testing.T) {
	config := testConfig(nil)
	config.NoOutput = true

	app, err := NewApplication(config)
	require.NoError(t, err)
	assert.Nil(t, app.Sink())
	assert.NoError(t, app.Shutdown())
}

func TestApplicationLifecycle(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(testConfig(mock.NewSink()))
	require.NoError(t, err)

	session, err := app.Open(context.Background(), "song", shortSequence())
	require.NoError(t, err)
	assert.Equal(t, "song", session.Key())
	assert.Equal(t, domain.StatePaused, session.Scheduler().Snapshot().State)

	// Opening the same key reuses the session
	again, err := app.Open(context.Background(), "song", shortSequence())
	require.NoError(t, err)
	assert.Same(t, session, again)
	assert.Equal(t, 1, app.Registry().Len())

	assert.NoError(t, app.Shutdown())
	assert.Equal(t, 0, app.Registry().Len())

	// Shutdown again should not panic
	assert.NotPanics(t, func() {
		assert.NoError(t, app.Shutdown())
	})

	_, err = app.Open(context.Background(), "other", shortSequence())
	assert.ErrorIs(t, err, domain.ErrRegistryClosed)
}

func TestApplication_OpenEmptySequence(t *testing.T) {
	app, err := NewApplication(testConfig(mock.NewSink()))
	require.NoError(t, err)
	defer app.Shutdown()

	_, err = app.Open(context.Background(), "empty", memory.NewSequence(nil))
	assert.ErrorIs(t, err, domain.ErrEmptySequence)
	assert.Equal(t, 0, app.Registry().Len())
}

func TestApplication_RunHeadlessPlaysToEnd(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	sink := mock.NewSink()
	app, err := NewApplication(testConfig(sink))
	require.NoError(t, err)

	session, err := app.Open(context.Background(), "song", shortSequence())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, app.RunHeadless(ctx, session))

	assert.Equal(t, 3, sink.Count())
	assert.False(t, session.Surface().State().Playing)
	assert.GreaterOrEqual(t, sink.Silenced(), 1)

	require.NoError(t, app.Shutdown())
}

func TestApplication_OpenFile(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var track smf.Track
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))
	track.Close(0)
	require.NoError(t, s.Add(track))

	path := filepath.Join(t.TempDir(), "one.mid")
	require.NoError(t, s.WriteFile(path))

	app, err := NewApplication(testConfig(mock.NewSink()))
	require.NoError(t, err)

	session, err := app.OpenFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Scheduler().Snapshot().Position.Length)
	assert.InDelta(t, 0.5, session.Surface().State().Duration, 1e-6)

	again, err := app.OpenFile(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, session, again)

	_, err = app.OpenFile(context.Background(), filepath.Join(t.TempDir(), "missing.mid"))
	var sourceErr *domain.SourceError
	assert.ErrorAs(t, err, &sourceErr)

	require.NoError(t, app.Shutdown())
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Contains(t, info.FullString(), "gotempo")
	assert.NotEmpty(t, info.GoVersion)
}
