// Package domain defines events for the event-driven architecture.
// Events let presenters and loggers observe transports without holding callbacks.
package domain

import (
	"time"
)

// BusEvent is the base interface for all events published on the event bus.
type BusEvent interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Transport events
	EventTransportPlayed          EventType = "transport.played"
	EventTransportPaused          EventType = "transport.paused"
	EventTransportPositionChanged EventType = "transport.position_changed"
	EventTransportTempoChanged    EventType = "transport.tempo_changed"

	// Session events
	EventSequenceLoaded EventType = "sequence.loaded"
	EventSessionClosed  EventType = "session.closed"
)

// EventHandler is a function that handles events.
type EventHandler func(event BusEvent)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
type baseEvent struct {
	timestamp time.Time
	session   SessionID
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// Session returns the session that produced the event.
func (e baseEvent) Session() SessionID {
	return e.session
}

func newBaseEvent(session SessionID) baseEvent {
	return baseEvent{timestamp: time.Now(), session: session}
}

// TransportPlayedEvent is published when a transport starts playing.
type TransportPlayedEvent struct {
	baseEvent
	Position float64 // normalized 0.0 to 1.0
}

// Type returns the event type.
func (e TransportPlayedEvent) Type() EventType {
	return EventTransportPlayed
}

// NewTransportPlayedEvent creates a new TransportPlayedEvent.
func NewTransportPlayedEvent(session SessionID, position float64) TransportPlayedEvent {
	return TransportPlayedEvent{baseEvent: newBaseEvent(session), Position: position}
}

// TransportPausedEvent is published when a transport pauses.
type TransportPausedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e TransportPausedEvent) Type() EventType {
	return EventTransportPaused
}

// NewTransportPausedEvent creates a new TransportPausedEvent.
func NewTransportPausedEvent(session SessionID) TransportPausedEvent {
	return TransportPausedEvent{baseEvent: newBaseEvent(session)}
}

// TransportPositionChangedEvent is published when the position is moved by a control.
type TransportPositionChangedEvent struct {
	baseEvent
	Position  float64
	IsPlaying bool
	Direction Direction
}

// Type returns the event type.
func (e TransportPositionChangedEvent) Type() EventType {
	return EventTransportPositionChanged
}

// NewTransportPositionChangedEvent creates a new TransportPositionChangedEvent.
func NewTransportPositionChangedEvent(session SessionID, position float64, playing bool, dir Direction) TransportPositionChangedEvent {
	return TransportPositionChangedEvent{
		baseEvent: newBaseEvent(session),
		Position:  position,
		IsPlaying: playing,
		Direction: dir,
	}
}

// TransportTempoChangedEvent is published when the tempo control moves.
type TransportTempoChangedEvent struct {
	baseEvent
	Tempo     float64
	IsPlaying bool
}

// Type returns the event type.
func (e TransportTempoChangedEvent) Type() EventType {
	return EventTransportTempoChanged
}

// NewTransportTempoChangedEvent creates a new TransportTempoChangedEvent.
func NewTransportTempoChangedEvent(session SessionID, tempo float64, playing bool) TransportTempoChangedEvent {
	return TransportTempoChangedEvent{baseEvent: newBaseEvent(session), Tempo: tempo, IsPlaying: playing}
}

// SequenceLoadedEvent is published when a session loads a sequence.
type SequenceLoadedEvent struct {
	baseEvent
	Key      string
	Events   int
	Duration float64
}

// Type returns the event type.
func (e SequenceLoadedEvent) Type() EventType {
	return EventSequenceLoaded
}

// NewSequenceLoadedEvent creates a new SequenceLoadedEvent.
func NewSequenceLoadedEvent(session SessionID, key string, events int, duration float64) SequenceLoadedEvent {
	return SequenceLoadedEvent{
		baseEvent: newBaseEvent(session),
		Key:       key,
		Events:    events,
		Duration:  duration,
	}
}

// SessionClosedEvent is published after a session has been torn down.
type SessionClosedEvent struct {
	baseEvent
	Err error
}

// Type returns the event type.
func (e SessionClosedEvent) Type() EventType {
	return EventSessionClosed
}

// NewSessionClosedEvent creates a new SessionClosedEvent.
func NewSessionClosedEvent(session SessionID, err error) SessionClosedEvent {
	return SessionClosedEvent{baseEvent: newBaseEvent(session), Err: err}
}
