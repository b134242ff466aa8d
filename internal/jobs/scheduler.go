package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"

	"go.uber.org/zap"
)

var (
	// ErrTickInProgress is returned when a tick is requested while another one is running
	ErrTickInProgress = errors.New("sync tick already in progress")
	// ErrAlreadyStarted is returned by a second Start
	ErrAlreadyStarted = errors.New("scheduler already started")
)

// Clock is the time source of the scheduler
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker the scheduler uses
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is the wall clock
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker { return &realTicker{t: time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// TickRunner runs one sync tick
type TickRunner interface {
	RunTick(ctx context.Context, opts TickOptions) *TickStats
}

// SchedulerStatus is a snapshot for the status endpoints
type SchedulerStatus struct {
	Started  bool       `json:"started"`
	Running  bool       `json:"running"`
	Interval string     `json:"interval"`
	Skipped  int64      `json:"skipped_ticks"`
	LastRun  *TickStats `json:"last_run,omitempty"`
}

// Scheduler owns the sync timer. State is Idle or Running; a tick requested while
// Running is skipped, never queued. Stop ends the timer but lets an in-flight tick finish.
type Scheduler struct {
	runner     TickRunner
	interval   time.Duration
	runOnStart bool
	clock      Clock
	metrics    *metrics.MetricsRegistry
	log        *zap.SugaredLogger

	running atomic.Bool
	skipped atomic.Int64
	ticks   sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	loopEnd chan struct{}
	stopped sync.Once
	last    *TickStats
}

// NewScheduler creates an idle scheduler. clock and m may be nil.
func NewScheduler(runner TickRunner, interval time.Duration, runOnStart bool, clock Clock, m *metrics.MetricsRegistry) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		clock:      clock,
		metrics:    m,
		log:        logging.WithComponent("sync_scheduler"),
		stopCh:     make(chan struct{}),
		loopEnd:    make(chan struct{}),
	}
}

// Start launches the timer loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ticker := s.clock.NewTicker(s.interval)
	go s.loop(ctx, ticker)

	s.log.Infow("Sync scheduler started", "interval", s.interval.String(), "run_on_start", s.runOnStart)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, ticker Ticker) {
	defer close(s.loopEnd)
	defer ticker.Stop()

	if s.runOnStart {
		s.tryAsync(ctx, TickOptions{Trigger: constants.TriggerSchedule})
	}

	for {
		select {
		case <-ticker.C():
			s.tryAsync(ctx, TickOptions{Trigger: constants.TriggerSchedule})
		case <-s.stopCh:
			s.log.Infow("Sync scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Infow("Shutting down sync scheduler")
			return
		}
	}
}

// Stop prevents future scheduled ticks. An in-flight tick is not interrupted; use Wait for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	s.stopped.Do(func() { close(s.stopCh) })
	if started {
		<-s.loopEnd
	}
}

// Wait blocks until no tick is running or ctx is done
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.ticks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger runs a tick synchronously. It returns ErrTickInProgress if one is already running.
func (s *Scheduler) Trigger(ctx context.Context, opts TickOptions) (*TickStats, error) {
	if !s.acquire() {
		return nil, ErrTickInProgress
	}
	s.ticks.Add(1)
	defer s.ticks.Done()
	return s.run(ctx, opts), nil
}

// TriggerAsync starts a tick in the background. It returns ErrTickInProgress if one is already running.
func (s *Scheduler) TriggerAsync(ctx context.Context, opts TickOptions) error {
	if !s.tryAsync(ctx, opts) {
		return ErrTickInProgress
	}
	return nil
}

// Status returns a snapshot of the scheduler
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *TickStats
	if s.last != nil {
		copied := *s.last
		last = &copied
	}
	return SchedulerStatus{
		Started:  s.started,
		Running:  s.running.Load(),
		Interval: s.interval.String(),
		Skipped:  s.skipped.Load(),
		LastRun:  last,
	}
}

func (s *Scheduler) tryAsync(ctx context.Context, opts TickOptions) bool {
	if !s.acquire() {
		return false
	}
	s.ticks.Add(1)
	go func() {
		defer s.ticks.Done()
		s.run(ctx, opts)
	}()
	return true
}

func (s *Scheduler) acquire() bool {
	if s.running.CompareAndSwap(false, true) {
		return true
	}
	s.skipped.Add(1)
	if s.metrics != nil {
		s.metrics.SyncTicksSkipped.Inc()
	}
	s.log.Warnw("Sync tick skipped, previous tick still running")
	return false
}

func (s *Scheduler) run(ctx context.Context, opts TickOptions) *TickStats {
	defer s.running.Store(false)

	// The tick outlives Stop and the caller's cancellation; each call inside has its own deadline.
	stats := s.runner.RunTick(context.WithoutCancel(ctx), opts)

	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()
	return stats
}
