// Package service provides the transport engine: the command queue, the
// playback scheduler, the control surface and the sessions that own them.
package service

import (
	"sync"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

// CommandQueue is a coalescing FIFO of commands crossing goroutines.
//
// Producers call Enqueue from any goroutine; it only appends under a short
// critical section and never blocks on the consumer. The consumer calls
// DrainAndApply, which swaps out the whole pending batch and applies it
// outside the lock, so apply may itself enqueue without deadlocking.
//
// Wake-ups are coalesced: the signal channel has a buffer of one, so a burst
// of enqueues between two drains produces a single wake-up.
type CommandQueue struct {
	apply func(domain.Command)

	mu      sync.Mutex
	pending []domain.Command
	seq     uint64
	signal  chan struct{}
}

// NewCommandQueue creates a queue that hands drained commands to apply.
func NewCommandQueue(apply func(domain.Command)) *CommandQueue {
	return &CommandQueue{
		apply:  apply,
		signal: make(chan struct{}, 1),
	}
}

// Enqueue stamps cmd with the next sequence number and appends it.
// Thread-safe: may be called from any goroutine.
func (q *CommandQueue) Enqueue(cmd domain.Command) uint64 {
	q.mu.Lock()
	q.seq++
	cmd.Seq = q.seq
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return cmd.Seq
}

// Wake returns a channel that receives once per outstanding batch.
func (q *CommandQueue) Wake() <-chan struct{} {
	return q.signal
}

// DrainAndApply applies every pending command in enqueue order and reports
// how many were applied. It must only be called from the consuming goroutine.
func (q *CommandQueue) DrainAndApply() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, cmd := range batch {
		q.apply(cmd)
	}
	return len(batch)
}

// Len returns the number of commands waiting to be drained.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
