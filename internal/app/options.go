package app

import (
	"time"

	"github.com/okian/facecam/internal/adapters/camera"
	"github.com/okian/facecam/internal/overlay"
	"github.com/okian/facecam/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLocale sets the user-facing strings.
func WithLocale(l Locale) Option {
	return func(s *Session) {
		if l.Code != "" {
			s.locale = l
		}
	}
}

// WithStyle sets the overlay style. The locale's strings are applied on top of it.
func WithStyle(style overlay.Style) Option {
	return func(s *Session) {
		s.style = &style
	}
}

// WithConstraints sets the preferred capture size.
func WithConstraints(c camera.Constraints) Option {
	return func(s *Session) {
		s.constraints = c
	}
}

// WithInterval sets the minimum time between recognition cycles. Zero disables throttling.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithRefreshRate sets the scheduler tick rate in Hz.
func WithRefreshRate(hz int) Option {
	return func(s *Session) {
		if hz > 0 {
			s.refreshHz = hz
		}
	}
}

// WithManualCycles starts the session without the refresh loop. Cycles run only
// when Cycle is called.
func WithManualCycles() Option {
	return func(s *Session) {
		s.manual = true
	}
}

// WithJPEGQuality sets the quality of encoded frames, 1..100.
func WithJPEGQuality(q int) Option {
	return func(s *Session) {
		if q > 0 && q <= 100 {
			s.quality = q
		}
	}
}

// WithFrames sets the broadcaster composited frames are published to.
func WithFrames(f *Frames) Option {
	return func(s *Session) {
		if f != nil {
			s.frames = f
		}
	}
}

// WithClock overrides the status timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}
