// Package mock provides a recording implementation of the OutputSink interface.
// This is used for testing the scheduler without a MIDI device.
package mock

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// Sink records every payload it receives.
//
// Thread-safety: This implementation is thread-safe.
type Sink struct {
	logger *slog.Logger

	payloads [][]byte
	silenced int
	dropped  int
	mu       sync.RWMutex

	// Behavior configuration (for testing error scenarios)
	fail bool
}

// NewSink creates a new recording sink.
func NewSink() *Sink {
	return &Sink{}
}

// SetLogger sets the logger for this sink.
func (m *Sink) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFail makes the sink drop payloads as an unavailable device would.
func (m *Sink) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Send records a copy of payload.
func (m *Sink) Send(payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		m.dropped++
		if m.logger != nil {
			m.logger.Debug("mock sink dropped payload", slog.Int("bytes", len(payload)))
		}
		return
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.payloads = append(m.payloads, cp)
}

// Silence counts all-notes-off requests.
func (m *Sink) Silence() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silenced++
}

// Payloads returns a copy of the recorded payloads in arrival order.
func (m *Sink) Payloads() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([][]byte, len(m.payloads))
	copy(out, m.payloads)
	return out
}

// Count returns the number of recorded payloads.
func (m *Sink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payloads)
}

// Silenced returns how many times Silence was called.
func (m *Sink) Silenced() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.silenced
}

// Dropped returns how many payloads were rejected while failing.
func (m *Sink) Dropped() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}

// Reset clears recorded state.
func (m *Sink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = nil
	m.silenced = 0
	m.dropped = 0
}

var (
	_ ports.OutputSink = (*Sink)(nil)
	_ ports.Silencer   = (*Sink)(nil)
)
