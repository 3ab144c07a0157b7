package app

import "errors"

var (
	// ErrNotStarted is returned by operations that need an open camera.
	ErrNotStarted = errors.New("session not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrCycleBusy is returned by Cycle while another cycle is in flight.
	ErrCycleBusy = errors.New("recognition cycle in flight")
	// ErrCycleThrottled is returned by Cycle within one interval of the last cycle start.
	ErrCycleThrottled = errors.New("recognition cycle throttled")
)
