// Package ports define interfaces for dependency inversion.
// These interfaces keep the scheduler independent of MIDI libraries, devices and files.
package ports

import (
	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

// EventSource is an ordered, time-stamped event sequence with a forward-scan
// cursor contract.
//
// Implementations are not required to be thread-safe. The scheduler reads a
// source only from its own goroutine, and a source is only replaced through
// Scheduler.Load, which is serialized against the scheduler's reads.
type EventSource interface {
	// EventsUpTo returns every deliverable event with timestamp <= bound,
	// scanning forward from index from. It returns the events in timestamp
	// order together with the index of the first event that was not consumed.
	// The returned index is never smaller than from.
	EventsUpTo(bound float64, from int) ([]domain.Event, int)

	// LocateIndexAtOrAfter returns the offset of the first event whose
	// timestamp is >= t, or Len() if there is none.
	LocateIndexAtOrAfter(t float64) int

	// Len returns the total number of events.
	Len() int

	// EndTime returns the last meaningful timestamp of the sequence.
	EndTime() float64
}
