package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

// SessionFactory builds a session for a new id.
type SessionFactory func(id domain.SessionID) (*Session, error)

// SessionRegistry maps sequence keys to their open sessions, so opening the
// same sequence twice returns the session already playing it.
type SessionRegistry struct {
	logger  *slog.Logger
	factory SessionFactory

	mu     sync.Mutex
	byID   map[domain.SessionID]*Session
	byKey  map[string]domain.SessionID
	closed bool
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(logger *slog.Logger, factory SessionFactory) *SessionRegistry {
	return &SessionRegistry{
		logger:  logger,
		factory: factory,
		byID:    make(map[domain.SessionID]*Session),
		byKey:   make(map[string]domain.SessionID),
	}
}

// Open returns the session for key, creating one if needed. The bool reports
// whether a new session was created. New sessions get a UUIDv7 id.
func (r *SessionRegistry) Open(key string) (*Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, domain.ErrRegistryClosed
	}
	if id, ok := r.byKey[key]; ok {
		r.logger.Debug("reusing session", slog.String("key", key), slog.String("session", string(id)))
		return r.byID[id], false, nil
	}

	id := domain.SessionID(uuid.Must(uuid.NewV7()).String())
	session, err := r.factory(id)
	if err != nil {
		return nil, false, fmt.Errorf("create session for %q: %w", key, err)
	}

	r.byID[id] = session
	r.byKey[key] = id
	r.logger.Debug("session opened", slog.String("key", key), slog.String("session", string(id)))
	return session, true, nil
}

// Get returns the session with the given id.
func (r *SessionRegistry) Get(id domain.SessionID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return session, nil
}

// Lookup returns the session registered for key.
func (r *SessionRegistry) Lookup(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

// Close stops the session and forgets it.
func (r *SessionRegistry) Close(id domain.SessionID) error {
	r.mu.Lock()
	session, ok := r.byID[id]
	if ok {
		r.forget(id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return session.Stop()
}

// forget must be called with mu held.
func (r *SessionRegistry) forget(id domain.SessionID) {
	delete(r.byID, id)
	for key, owner := range r.byKey {
		if owner == id {
			delete(r.byKey, key)
		}
	}
}

// CloseAll stops every session and refuses further opens.
func (r *SessionRegistry) CloseAll() error {
	r.mu.Lock()
	r.closed = true
	sessions := make([]*Session, 0, len(r.byID))
	for _, session := range r.byID {
		sessions = append(sessions, session)
	}
	r.byID = make(map[domain.SessionID]*Session)
	r.byKey = make(map[string]domain.SessionID)
	r.mu.Unlock()

	var errs []error
	for _, session := range sessions {
		if err := session.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
