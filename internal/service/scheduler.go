package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	// TickInterval is the polling period of the scheduling goroutine
	TickInterval time.Duration

	// ReportEvery is the number of playing ticks between position reports
	ReportEvery int

	// InitialRatio is the tempo ratio before any SetTempo command
	InitialRatio float64
}

// DefaultSchedulerOptions returns a 10ms tick reporting every 10th tick.
func DefaultSchedulerOptions() SchedulerOptions {
	return SchedulerOptions{
		TickInterval: 10 * time.Millisecond,
		ReportEvery:  10,
		InitialRatio: 1.0,
	}
}

// SchedulerSnapshot is a consistent copy of the scheduler state.
type SchedulerSnapshot struct {
	State    domain.RunState
	Position domain.PlaybackPosition
	Tempo    domain.TempoState
	EndTime  float64
	HasSink  bool
}

// Normalized returns the position as a fraction of the sequence duration.
func (s SchedulerSnapshot) Normalized() float64 {
	return normalize(s.Position.Time, s.EndTime)
}

// SchedulerStats counts what the scheduler has done since construction.
type SchedulerStats struct {
	Ticks         uint64
	Commands      uint64
	EventsSent    uint64
	EventsSkipped uint64 // malformed events stepped over
	EventsDropped uint64 // due events with no sink attached
	Reports       uint64
}

// Scheduler advances musical time on its own goroutine and emits due events
// from an EventSource to an OutputSink.
//
// All playback state is owned by the scheduling goroutine. Other goroutines
// talk to it through Enqueue (or the Play/Pause/Seek/SetTempo helpers) and
// read it through Snapshot. Load and SetSink are serialized against ticks by
// the scheduler mutex.
type Scheduler struct {
	// Dependencies (injected)
	logger *slog.Logger
	clock  ports.Clock
	opts   SchedulerOptions

	queue *CommandQueue

	// mu protects everything below
	mu       sync.Mutex
	source   ports.EventSource
	sink     ports.OutputSink
	reporter ports.MessageSender
	state    domain.RunState
	position domain.PlaybackPosition
	ratio    float64
	lastTick time.Time
	now      time.Time // clock reading of the tick in progress
	ticks    uint64
	stats    SchedulerStats
	closed   bool

	// Loop control
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates an idle scheduler. Zero option fields fall back to
// DefaultSchedulerOptions.
func NewScheduler(logger *slog.Logger, clock ports.Clock, opts SchedulerOptions) *Scheduler {
	defaults := DefaultSchedulerOptions()
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}
	if opts.ReportEvery <= 0 {
		opts.ReportEvery = defaults.ReportEvery
	}
	if !validRatio(opts.InitialRatio) {
		opts.InitialRatio = defaults.InitialRatio
	}
	if clock == nil {
		clock = wallClock{}
	}

	s := &Scheduler{
		logger: logger,
		clock:  clock,
		opts:   opts,
		state:  domain.StateIdle,
		ratio:  opts.InitialRatio,
	}
	s.queue = NewCommandQueue(s.apply)

	logger.Debug("scheduler initialized",
		slog.Duration("tick_interval", opts.TickInterval),
		slog.Int("report_every", opts.ReportEvery))

	return s
}

// Load installs a new event source. The scheduler becomes Paused at time 0.
// An empty source leaves the scheduler Idle and returns ErrEmptySequence.
func (s *Scheduler) Load(source ports.EventSource) error {
	if source == nil {
		return domain.NewServiceError("Scheduler", "Load", "no event source", domain.ErrNilSource)
	}

	n := source.Len()
	end := source.EndTime()

	s.mu.Lock()
	defer s.mu.Unlock()

	if n == 0 {
		s.unloadLocked()
		s.logger.Warn("rejected empty sequence")
		return domain.NewServiceError("Scheduler", "Load", "sequence is empty", domain.ErrEmptySequence)
	}
	if math.IsNaN(end) || math.IsInf(end, 0) || end < 0 {
		s.unloadLocked()
		s.logger.Warn("rejected sequence end time", slog.Float64("end_time", end))
		return domain.NewValidationError("end_time", end, "end time must be finite and not negative")
	}

	if s.state == domain.StatePlaying {
		s.silenceLocked()
	}
	s.source = source
	s.state = domain.StatePaused
	s.position = domain.PlaybackPosition{Time: 0, Index: 0, Length: n}

	s.logger.Debug("sequence loaded", slog.Int("events", n), slog.Float64("end_time", end))
	return nil
}

func (s *Scheduler) unloadLocked() {
	s.source = nil
	s.state = domain.StateIdle
	s.position = domain.PlaybackPosition{}
}

// Enqueue hands a command to the scheduling goroutine. It never blocks.
func (s *Scheduler) Enqueue(cmd domain.Command) uint64 {
	return s.queue.Enqueue(cmd)
}

// SendMessage implements ports.MessageSender so a control surface can drive
// the scheduler.
func (s *Scheduler) SendMessage(cmd domain.Command) {
	s.queue.Enqueue(cmd)
}

// Play enqueues a SetPlaying command.
func (s *Scheduler) Play() {
	s.Enqueue(domain.NewCommand(domain.CommandSetPlaying, 0, 0, true))
}

// Pause enqueues a SetPausing command.
func (s *Scheduler) Pause() {
	s.Enqueue(domain.NewCommand(domain.CommandSetPausing, 0, 0, true))
}

// Seek enqueues a move to seconds, clamped to the sequence when applied.
func (s *Scheduler) Seek(seconds float64) {
	s.Enqueue(domain.NewCommand(domain.CommandSetPosition, seconds, 0, true))
}

// SetTempo enqueues a tempo ratio change. Non-positive ratios are ignored
// when applied.
func (s *Scheduler) SetTempo(ratio float64) {
	s.Enqueue(domain.NewCommand(domain.CommandSetTempo, ratio, 0, true))
}

// SetSink swaps the output sink. A nil sink leaves the scheduler armed but
// unconnected: the cursor keeps moving and due events are dropped.
func (s *Scheduler) SetSink(sink ports.OutputSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// SetReporter sets where position and state reports are sent.
func (s *Scheduler) SetReporter(reporter ports.MessageSender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reporter = reporter
}

// Snapshot returns a consistent copy of the scheduler state.
func (s *Scheduler) Snapshot() SchedulerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SchedulerSnapshot{
		State:    s.state,
		Position: s.position,
		Tempo:    domain.TempoState{Ratio: s.ratio},
		HasSink:  s.sink != nil,
	}
	if s.source != nil {
		snap.EndTime = s.source.EndTime()
	}
	return snap
}

// Stats returns the scheduler counters.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Start launches the scheduling goroutine. The loop ends when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || s.closed {
		s.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	done := s.done
	s.mu.Unlock()

	go s.run(loopCtx, done)

	s.logger.Debug("scheduler started")
	return nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// Stop halts the scheduling goroutine and waits up to timeout for it to
// exit. Once Stop begins the sink receives nothing more, and pending
// commands are discarded.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.mu.Lock()
	s.closed = true
	if !s.running {
		s.mu.Unlock()
		return domain.ErrNotStarted
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Debug("scheduler stopped")
		return nil
	case <-timer.C:
		s.logger.Error("scheduler did not stop in time", slog.Duration("timeout", timeout))
		return fmt.Errorf("scheduler stop: %w", domain.ErrShutdownTimeout)
	}
}

// tick runs one scheduling step. Commands are applied before the clock
// advances, so anything emitted in this tick reflects them.
func (s *Scheduler) tick() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.now = now
	s.stats.Ticks++
	s.queue.DrainAndApply()

	if s.state != domain.StatePlaying || s.source == nil {
		return
	}

	s.advance(now)

	end := s.source.EndTime()
	bound := s.position.Time
	ended := bound > end
	if ended {
		bound = end
	}

	s.emit(bound)

	if ended {
		s.finish()
		return
	}

	s.ticks++
	if s.ticks%uint64(s.opts.ReportEvery) == 0 {
		s.report(domain.NewCommand(domain.CommandSetPosition, normalize(s.position.Time, end), 0, false))
	}
}

// advance moves musical time forward by the wall-clock time since the last
// reading, scaled by the current ratio.
func (s *Scheduler) advance(now time.Time) {
	if s.state != domain.StatePlaying {
		return
	}
	if elapsed := now.Sub(s.lastTick).Seconds(); elapsed > 0 {
		s.position.Time += elapsed * s.ratio
	}
	s.lastTick = now
}

// emit sends every due event up to bound and moves the cursor past them.
func (s *Scheduler) emit(bound float64) {
	events, next := s.source.EventsUpTo(bound, s.position.Index)
	for _, event := range events {
		if !event.Valid() {
			s.stats.EventsSkipped++
			s.logger.Debug("skipping malformed event",
				slog.Float64("time", event.Time),
				slog.Int("bytes", len(event.Payload)))
			continue
		}
		if s.sink == nil {
			s.stats.EventsDropped++
			continue
		}
		s.sink.Send(event.Payload)
		s.stats.EventsSent++
	}
	if next > s.position.Index {
		s.position.Index = next
	}
}

// finish handles the natural end of the sequence: pause and rewind, and tell
// the surface as if the user had pressed pause and then rewind.
func (s *Scheduler) finish() {
	s.state = domain.StatePaused
	s.position.Time = 0
	s.position.Index = 0
	s.ticks = 0
	s.silenceLocked()

	s.logger.Debug("reached end of sequence")

	s.report(domain.NewCommand(domain.CommandSetPausing, 0, 0, true))
	s.report(domain.NewCommand(domain.CommandSetPosition, 0, 0, true))
}

// apply executes one drained command. Called from tick with mu held.
func (s *Scheduler) apply(cmd domain.Command) {
	s.stats.Commands++
	s.logger.Debug("applying command", slog.String("command", cmd.String()))

	switch cmd.Kind {
	case domain.CommandSetPlaying:
		s.applyPlay()
	case domain.CommandSetPausing:
		s.applyPause()
	case domain.CommandSetPosition:
		s.applySeek(cmd.Value)
	case domain.CommandSetTempo:
		s.applyTempo(cmd.Value)
	default:
		s.logger.Warn("unknown command", slog.String("command", cmd.String()))
	}
}

func (s *Scheduler) applyPlay() {
	switch s.state {
	case domain.StateIdle:
		s.logger.Debug("play ignored, no sequence loaded")
		// Correct an optimistic play icon on the surface.
		s.report(domain.NewCommand(domain.CommandSetPausing, 0, 0, false))
	case domain.StatePaused:
		s.state = domain.StatePlaying
		s.lastTick = s.now
		s.ticks = 0
		s.logger.Debug("playing", slog.Float64("time", s.position.Time))
	}
}

func (s *Scheduler) applyPause() {
	if s.state != domain.StatePlaying {
		return
	}
	s.advance(s.now)
	s.state = domain.StatePaused
	s.silenceLocked()
	s.logger.Debug("paused", slog.Float64("time", s.position.Time))
}

func (s *Scheduler) applySeek(target float64) {
	if s.source == nil {
		s.logger.Debug("seek ignored, no sequence loaded")
		return
	}
	if math.IsNaN(target) {
		s.logger.Warn("seek ignored, target is not a number")
		return
	}

	end := s.source.EndTime()
	target = math.Max(0, math.Min(end, target))

	s.position.Time = target
	s.position.Index = s.source.LocateIndexAtOrAfter(target)
	if s.state == domain.StatePlaying {
		s.lastTick = s.now
	}
	s.silenceLocked()

	s.logger.Debug("seeked",
		slog.Float64("time", target),
		slog.Int("index", s.position.Index))
}

func (s *Scheduler) applyTempo(ratio float64) {
	if !validRatio(ratio) {
		s.logger.Warn("tempo ignored", slog.Any("error", domain.ErrInvalidTempo), slog.Float64("ratio", ratio))
		return
	}
	// Time already played is kept at the old ratio.
	s.advance(s.now)
	s.ratio = ratio
	s.logger.Debug("tempo changed", slog.Float64("ratio", ratio))
}

// silenceLocked releases sounding notes when the sink supports it.
func (s *Scheduler) silenceLocked() {
	if s.closed {
		return
	}
	if silencer, ok := s.sink.(ports.Silencer); ok {
		silencer.Silence()
	}
}

func (s *Scheduler) report(cmd domain.Command) {
	if s.reporter == nil {
		return
	}
	s.stats.Reports++
	s.reporter.SendMessage(cmd)
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func validRatio(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

func normalize(t, end float64) float64 {
	if end <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, t/end))
}

var _ ports.MessageSender = (*Scheduler)(nil)
