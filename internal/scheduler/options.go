package scheduler

import (
	"time"

	"github.com/okian/facecam/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithRefreshRate sets the tick frequency in Hz.
func WithRefreshRate(hz int) Option {
	return func(s *Scheduler) {
		if hz > 0 {
			s.refresh = time.Second / time.Duration(hz)
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDecisionHook is called with every tick decision.
func WithDecisionHook(fn func(Decision)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.onDecision = fn
		}
	}
}
