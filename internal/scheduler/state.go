// Package scheduler decides, once per refresh tick, whether a recognition cycle may start.
package scheduler

import (
	"sync"
	"time"
)

// Decision is the outcome of one refresh tick.
type Decision int

const (
	// Busy means a cycle is still in flight.
	Busy Decision = iota
	// Throttled means the last cycle started less than one interval ago.
	Throttled
	// Started means a new cycle was admitted.
	Started
)

func (d Decision) String() string {
	switch d {
	case Busy:
		return "busy"
	case Throttled:
		return "throttled"
	case Started:
		return "started"
	default:
		return "unknown"
	}
}

// State holds the two loop flags: whether a cycle is in flight and when the last one started.
type State struct {
	mu       sync.Mutex
	interval time.Duration
	busy     bool
	lastTick time.Time
}

// NewState returns an idle state with the given minimum spacing between cycle starts.
func NewState(interval time.Duration) *State {
	if interval < 0 {
		interval = 0
	}
	return &State{interval: interval}
}

// TryBegin admits a cycle at now unless one is in flight or the interval has not elapsed.
// On Started it records now as the last tick and marks the state busy.
func (s *State) TryBegin(now time.Time) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return Busy
	}
	if !s.lastTick.IsZero() && now.Sub(s.lastTick) < s.interval {
		return Throttled
	}
	s.lastTick = now
	s.busy = true
	return Started
}

// Finish clears the busy flag.
func (s *State) Finish() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Busy reports whether a cycle is in flight.
func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastTick returns the start time of the most recent cycle.
func (s *State) LastTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}

// Interval returns the configured throttle interval.
func (s *State) Interval() time.Duration { return s.interval }
