// Package memory provides the reference in-memory event source.
package memory

import (
	"math"
	"sort"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// Sequence is an immutable, time-ordered slice of events.
//
// Sequence is not safe for concurrent mutation, but it is never mutated after
// construction, so concurrent readers are fine.
type Sequence struct {
	events  []domain.Event
	endTime float64
}

// Option configures a Sequence.
type Option func(*Sequence)

// WithEndTime overrides the authoritative end time. By default it is the
// largest finite event timestamp.
func WithEndTime(t float64) Option {
	return func(s *Sequence) {
		if !math.IsNaN(t) && !math.IsInf(t, 0) && t >= 0 {
			s.endTime = t
		}
	}
}

// NewSequence copies and stably sorts events by timestamp.
// Events with a NaN timestamp sort first so the scheduler reaches (and skips)
// them immediately instead of stalling the cursor behind them.
func NewSequence(events []domain.Event, opts ...Option) *Sequence {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i].Time) < sortKey(sorted[j].Time)
	})

	s := &Sequence{events: sorted}
	for _, e := range sorted {
		if !math.IsNaN(e.Time) && !math.IsInf(e.Time, 0) && e.Time > s.endTime {
			s.endTime = e.Time
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sortKey(t float64) float64 {
	if math.IsNaN(t) {
		return math.Inf(-1)
	}
	return t
}

// EventsUpTo returns the events at offsets >= from whose timestamp is not
// after bound, and the offset of the first event left unconsumed.
func (s *Sequence) EventsUpTo(bound float64, from int) ([]domain.Event, int) {
	if from < 0 {
		from = 0
	}
	if from >= len(s.events) {
		return nil, max(from, len(s.events))
	}

	next := from
	for next < len(s.events) && !(s.events[next].Time > bound) {
		next++
	}
	if next == from {
		return nil, from
	}
	return s.events[from:next:next], next
}

// LocateIndexAtOrAfter binary-searches for the first event at or after t.
func (s *Sequence) LocateIndexAtOrAfter(t float64) int {
	return sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Time >= t
	})
}

// Len returns the number of events.
func (s *Sequence) Len() int { return len(s.events) }

// EndTime returns the authoritative end of the sequence in seconds.
func (s *Sequence) EndTime() float64 { return s.endTime }

// Events returns a copy of the ordered events.
func (s *Sequence) Events() []domain.Event {
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

var _ ports.EventSource = (*Sequence)(nil)
