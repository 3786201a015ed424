// Package gomidi provides an output sink that writes to a MIDI out port.
package gomidi

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// allNotesOff is the channel mode controller that releases every sounding note.
const allNotesOff = 123

// SendFunc writes one message to a port.
type SendFunc func(msg midi.Message) error

// Sink delivers payloads to a MIDI output. Delivery errors are logged and
// counted, never returned.
//
// Thread-safety: Send and Silence may be called from the scheduler goroutine
// while Close is called from another one.
type Sink struct {
	logger *slog.Logger
	name   string

	mu     sync.Mutex
	send   SendFunc
	port   drivers.Out
	closed bool

	sent   atomic.Uint64
	failed atomic.Uint64
}

// New wraps an already opened send function.
func New(logger *slog.Logger, name string, send SendFunc) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		logger: logger.With(slog.String("port", name)),
		name:   name,
		send:   send,
	}
}

// Open resolves selector to an output port and opens it.
// See ResolvePort for the accepted forms of selector.
func Open(logger *slog.Logger, selector string) (*Sink, error) {
	port, err := ResolvePort(selector)
	if err != nil {
		return nil, err
	}

	send, err := midi.SendTo(port)
	if err != nil {
		return nil, &domain.SinkError{Port: port.String(), Err: err}
	}

	s := New(logger, port.String(), send)
	s.port = port
	s.logger.Info("output port opened")
	return s, nil
}

// ResolvePort finds an output port. An empty selector picks the first port, a
// number picks by position, anything else matches the port name
// case-insensitively as a substring.
func ResolvePort(selector string) (drivers.Out, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI output ports: %w", domain.ErrPortNotFound)
	}

	selector = strings.TrimSpace(selector)
	if selector == "" {
		return outs[0], nil
	}

	if n, err := strconv.Atoi(selector); err == nil {
		for i, port := range outs {
			if i == n {
				return port, nil
			}
		}
		return nil, fmt.Errorf("port %d: %w", n, domain.ErrPortNotFound)
	}

	want := strings.ToLower(selector)
	for _, port := range outs {
		if strings.Contains(strings.ToLower(port.String()), want) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("port %q: %w", selector, domain.ErrPortNotFound)
}

// ListPorts returns the names of the available output ports in driver order.
func ListPorts() []string {
	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, port := range outs {
		names = append(names, port.String())
	}
	return names
}

// Name returns the port name.
func (s *Sink) Name() string { return s.name }

// Send writes payload to the port.
func (s *Sink) Send(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(midi.Message(payload))
}

// Silence sends all-notes-off on every channel.
func (s *Sink) Silence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := uint8(0); ch < 16; ch++ {
		s.write(midi.ControlChange(ch, allNotesOff, 0))
	}
}

// write must be called with mu held.
func (s *Sink) write(msg midi.Message) {
	if s.closed || s.send == nil {
		return
	}
	if err := s.send(msg); err != nil {
		s.failed.Add(1)
		s.logger.Debug("send failed", slog.Any("error", &domain.SinkError{Port: s.name, Err: err}))
		return
	}
	s.sent.Add(1)
}

// Sent returns the number of messages written successfully.
func (s *Sink) Sent() uint64 { return s.sent.Load() }

// Failed returns the number of messages the port rejected.
func (s *Sink) Failed() uint64 { return s.failed.Load() }

// Close stops delivery and closes the port if Open created it.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.port != nil {
		if err := s.port.Close(); err != nil {
			return &domain.SinkError{Port: s.name, Err: err}
		}
	}
	return nil
}

var (
	_ ports.OutputSink = (*Sink)(nil)
	_ ports.Silencer   = (*Sink)(nil)
)
