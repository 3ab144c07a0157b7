package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/facecam/pkg/logger"
	"github.com/okian/facecam/pkg/metrics"
)

const defaultRefreshHz = 60

// Cycle is one recognition cycle. Errors are logged; they never stop the loop.
type Cycle func(ctx context.Context) error

// Scheduler drives a State from a ticker and runs admitted cycles asynchronously.
type Scheduler struct {
	state      *State
	cycle      Cycle
	refresh    time.Duration
	now        func() time.Time
	onDecision func(Decision)
	logger     logger.Logger

	wg sync.WaitGroup
}

// New creates a scheduler over state that runs cycle when admitted.
func New(state *State, cycle Cycle, opts ...Option) *Scheduler {
	s := &Scheduler{
		state:   state,
		cycle:   cycle,
		refresh: time.Second / defaultRefreshHz,
		now:     time.Now,
		onDecision: func(d Decision) {
			metrics.RecordSchedulerDecision(d.String())
		},
		logger: logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick evaluates one refresh callback at now. On Started the cycle is launched on its
// own goroutine and Tick returns without waiting for it.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) Decision {
	d := s.state.TryBegin(now)
	s.onDecision(d)
	if d != Started {
		return d
	}

	s.wg.Add(1)
	go s.run(ctx)
	return d
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	defer s.state.Finish()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordCyclePanic()
			s.logger.Error(ctx, "recognition cycle panicked", logger.Error(fmt.Errorf("panic: %v", r)))
		}
	}()

	start := s.now()
	if err := s.cycle(ctx); err != nil {
		s.logger.Warn(ctx, "recognition cycle failed",
			logger.Error(err),
			logger.Duration("elapsed", s.now().Sub(start)))
		return
	}
	s.logger.Debug(ctx, "recognition cycle done", logger.Duration("elapsed", s.now().Sub(start)))
}

// Run ticks at the refresh rate until ctx is done, then waits for the in-flight cycle.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	s.logger.Info(ctx, "scheduler started",
		logger.Duration("refresh", s.refresh),
		logger.Duration("interval", s.state.Interval()))

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info(ctx, "scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Wait blocks until every launched cycle has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }
