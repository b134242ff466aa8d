package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// blockingRunner holds every tick until release is closed
type blockingRunner struct {
	release chan struct{}
	calls   atomic.Int32
	mu      sync.Mutex
	ctxs    []context.Context
	opts    []TickOptions
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{})}
}

func (r *blockingRunner) RunTick(ctx context.Context, opts TickOptions) *TickStats {
	r.mu.Lock()
	r.ctxs = append(r.ctxs, ctx)
	r.opts = append(r.opts, opts)
	r.mu.Unlock()
	r.calls.Add(1)

	<-r.release
	return &TickStats{RunID: "run", Trigger: opts.Trigger, Full: opts.Full}
}

func TestScheduler_OverlappingTickIsSkipped(t *testing.T) {
	runner := newBlockingRunner()
	clock := newFakeClock(time.Now())
	s := NewScheduler(runner, time.Minute, false, clock, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ticker := clock.ticker(t)

	ticker.fire(t)
	waitFor(t, "first tick", func() bool { return runner.calls.Load() == 1 })

	ticker.fire(t)
	ticker.fire(t)
	waitFor(t, "skips", func() bool { return s.Status().Skipped == 2 })

	if !s.Status().Running {
		t.Error("Expected scheduler to report a running tick")
	}
	if got := runner.calls.Load(); got != 1 {
		t.Errorf("Expected 1 tick to run, got %d", got)
	}

	close(runner.release)
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.Stop()

	status := s.Status()
	if status.Running || status.LastRun == nil || status.LastRun.RunID != "run" {
		t.Errorf("Unexpected status after tick %+v", status)
	}
}

func TestScheduler_TriggerWhileRunning(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler(runner, time.Minute, false, newFakeClock(time.Now()), nil)

	if err := s.TriggerAsync(context.Background(), TickOptions{Full: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitFor(t, "async tick", func() bool { return runner.calls.Load() == 1 })

	if _, err := s.Trigger(context.Background(), TickOptions{}); !errors.Is(err, ErrTickInProgress) {
		t.Errorf("Expected ErrTickInProgress, got %v", err)
	}
	if err := s.TriggerAsync(context.Background(), TickOptions{}); !errors.Is(err, ErrTickInProgress) {
		t.Errorf("Expected ErrTickInProgress, got %v", err)
	}

	close(runner.release)
	s.Wait(context.Background())

	stats, err := s.Trigger(context.Background(), TickOptions{Trigger: "manual"})
	if err != nil {
		t.Fatalf("Expected trigger after completion to run, got %v", err)
	}
	if stats.Trigger != "manual" {
		t.Errorf("Expected trigger manual, got %s", stats.Trigger)
	}
	if !runner.opts[0].Full {
		t.Error("Expected first tick to be a full sync")
	}
}

func TestScheduler_StopPreventsTicksButNotInFlight(t *testing.T) {
	runner := newBlockingRunner()
	clock := newFakeClock(time.Now())
	s := NewScheduler(runner, time.Minute, false, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	ticker := clock.ticker(t)

	ticker.fire(t)
	waitFor(t, "tick", func() bool { return runner.calls.Load() == 1 })

	s.Stop()
	cancel()

	if !ticker.isStopped() {
		t.Error("Expected ticker to be stopped")
	}
	runner.mu.Lock()
	tickCtx := runner.ctxs[0]
	runner.mu.Unlock()
	if tickCtx.Err() != nil {
		t.Errorf("Expected in-flight tick context to stay alive, got %v", tickCtx.Err())
	}

	select {
	case ticker.c <- time.Now():
		t.Error("Expected no loop listening after Stop")
	case <-time.After(20 * time.Millisecond):
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()
	if err := s.Wait(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected Wait to time out while the tick runs, got %v", err)
	}

	close(runner.release)
	if err := s.Wait(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestScheduler_RunOnStart(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	s := NewScheduler(runner, time.Minute, true, newFakeClock(time.Now()), nil)

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, "run on start", func() bool { return runner.calls.Load() == 1 })
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
}
