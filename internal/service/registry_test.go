package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gotempo/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/logger"
)

func newTestRegistry(t *testing.T) *SessionRegistry {
	t.Helper()

	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	log := logger.NewTestLogger()
	return NewSessionRegistry(log, func(id domain.SessionID) (*Session, error) {
		return NewSession(log, bus, nil, SessionConfig{ID: id, Surface: DefaultSurfaceConfig()}), nil
	})
}

func TestSessionRegistry_OpenReusesByKey(t *testing.T) {
	registry := newTestRegistry(t)

	first, created, err := registry.Open("a.mid")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := registry.Open("a.mid")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created, err := registry.Open("b.mid")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID(), other.ID())

	assert.Equal(t, 2, registry.Len())

	parsed, err := uuid.Parse(string(first.ID()))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSessionRegistry_GetLookupClose(t *testing.T) {
	registry := newTestRegistry(t)

	session, _, err := registry.Open("a.mid")
	require.NoError(t, err)

	got, err := registry.Get(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	found, ok := registry.Lookup("a.mid")
	assert.True(t, ok)
	assert.Same(t, session, found)

	require.NoError(t, registry.Close(session.ID()))
	assert.Equal(t, 0, registry.Len())

	_, ok = registry.Lookup("a.mid")
	assert.False(t, ok)

	_, err = registry.Get(session.ID())
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	assert.True(t, errors.Is(registry.Close(session.ID()), domain.ErrSessionNotFound))

	// A closed key opens a fresh session.
	reopened, created, err := registry.Open("a.mid")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, session.ID(), reopened.ID())
}

func TestSessionRegistry_CloseAll(t *testing.T) {
	registry := newTestRegistry(t)

	_, _, err := registry.Open("a.mid")
	require.NoError(t, err)
	_, _, err = registry.Open("b.mid")
	require.NoError(t, err)

	require.NoError(t, registry.CloseAll())
	assert.Equal(t, 0, registry.Len())

	_, _, err = registry.Open("c.mid")
	assert.ErrorIs(t, err, domain.ErrRegistryClosed)
}

func TestSessionRegistry_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	registry := NewSessionRegistry(logger.NewTestLogger(), func(domain.SessionID) (*Session, error) {
		return nil, boom
	})

	_, _, err := registry.Open("a.mid")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, registry.Len())
}
