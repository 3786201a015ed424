package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

func TestCommandQueue_FIFO(t *testing.T) {
	var applied []domain.Command
	q := NewCommandQueue(func(cmd domain.Command) { applied = append(applied, cmd) })

	for i := 0; i < 5; i++ {
		q.Enqueue(domain.NewCommand(domain.CommandSetPosition, float64(i), 0, false))
	}
	assert.Equal(t, 5, q.Len())

	require.Equal(t, 5, q.DrainAndApply())
	require.Len(t, applied, 5)
	for i, cmd := range applied {
		assert.Equal(t, float64(i), cmd.Value)
		assert.Equal(t, uint64(i+1), cmd.Seq)
	}
	assert.Equal(t, 0, q.Len())
}

func TestCommandQueue_FIFOConcurrentProducers(t *testing.T) {
	var applied []domain.Command
	q := NewCommandQueue(func(cmd domain.Command) { applied = append(applied, cmd) })

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(domain.NewCommand(domain.CommandSetTempo, float64(i), p, false))
			}
		}(p)
	}

	// Drain while producers are still running.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		case <-q.Wake():
			q.DrainAndApply()
		}
	}
	q.DrainAndApply()

	require.Len(t, applied, producers*perProducer)

	last := make(map[int]float64)
	for i, cmd := range applied {
		if i > 0 {
			assert.Greater(t, cmd.Seq, applied[i-1].Seq, "sequence numbers must increase")
		}
		if prev, ok := last[cmd.Int]; ok {
			assert.Greater(t, cmd.Value, prev, "producer %d out of order", cmd.Int)
		}
		last[cmd.Int] = cmd.Value
	}
}

func TestCommandQueue_CoalescesWakeups(t *testing.T) {
	q := NewCommandQueue(func(domain.Command) {})

	for i := 0; i < 100; i++ {
		q.Enqueue(domain.NewCommand(domain.CommandSetPlaying, 0, 0, true))
	}

	assert.Len(t, q.Wake(), 1)
	<-q.Wake()
	assert.Equal(t, 100, q.DrainAndApply())
	assert.Len(t, q.Wake(), 0)
}

func TestCommandQueue_EmptyDrainIsNoop(t *testing.T) {
	calls := 0
	q := NewCommandQueue(func(domain.Command) { calls++ })

	assert.Equal(t, 0, q.DrainAndApply())
	assert.Equal(t, 0, calls)
}

func TestCommandQueue_ApplyMayEnqueue(t *testing.T) {
	var q *CommandQueue
	var applied []uint64
	q = NewCommandQueue(func(cmd domain.Command) {
		applied = append(applied, cmd.Seq)
		if cmd.Seq == 1 {
			q.Enqueue(domain.NewCommand(domain.CommandSetPausing, 0, 0, false))
		}
	})

	q.Enqueue(domain.NewCommand(domain.CommandSetPlaying, 0, 0, false))
	q.Enqueue(domain.NewCommand(domain.CommandSetPlaying, 0, 0, false))

	// The command enqueued during apply waits for the next batch.
	assert.Equal(t, 2, q.DrainAndApply())
	assert.Equal(t, []uint64{1, 2}, applied)
	assert.Equal(t, 1, q.Len())

	assert.Equal(t, 1, q.DrainAndApply())
	assert.Equal(t, []uint64{1, 2, 3}, applied)
}
