package remote

import (
	"net/http"
	"time"

	"github.com/okian/facecam/pkg/logger"
)

// Paths are the service endpoints relative to the base URL.
type Paths struct {
	ProcessFrame string
	Faces        string
	Upload       string
	Delete       string
}

// DefaultPaths returns the endpoints served by the recognition service.
func DefaultPaths() Paths {
	return Paths{
		ProcessFrame: "/api/process-frame",
		Faces:        "/api/faces",
		Upload:       "/api/upload-face",
		Delete:       "/api/delete-face",
	}
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each recognition request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithPaths overrides the endpoint paths. Empty fields keep their defaults.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.ProcessFrame != "" {
			c.paths.ProcessFrame = p.ProcessFrame
		}
		if p.Faces != "" {
			c.paths.Faces = p.Faces
		}
		if p.Upload != "" {
			c.paths.Upload = p.Upload
		}
		if p.Delete != "" {
			c.paths.Delete = p.Delete
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
