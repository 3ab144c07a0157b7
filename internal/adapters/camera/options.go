package camera

import (
	"net/http"
	"time"

	"github.com/okian/facecam/pkg/logger"
)

// Option configures a source.
type Option func(*options)

type options struct {
	client       *http.Client
	pollInterval time.Duration
	logger       logger.Logger
}

func defaultOptions() *options {
	return &options{
		client:       &http.Client{},
		pollInterval: 100 * time.Millisecond,
		logger:       logger.Get().Named("camera"),
	}
}

// WithHTTPClient sets the client used to reach network cameras.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithPollInterval sets how often a snapshot camera is polled.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
