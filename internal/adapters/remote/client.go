// Package remote talks to the recognition service: frame recognition and the known-face registry.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/pkg/logger"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 8 << 20
)

// ErrBadBaseURL is returned by New for a base URL that is not absolute.
var ErrBadBaseURL = errors.New("remote: base url must be absolute")

// Client is the shared transport for recognition and registry calls.
type Client struct {
	base    *url.URL
	paths   Paths
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadBaseURL, baseURL)
	}
	c := &Client{
		base:   u,
		paths:  DefaultPaths(),
		http:   &http.Client{},
		logger: logger.Get().Named("remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

// request describes one call to the service.
type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

// do sends req and returns the body of a 2xx response. Network failures become
// *model.TransportError; non-2xx responses become *model.RemoteProcessingError.
func (c *Client) do(ctx context.Context, req request) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path), req.body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: could not create request: %w", req.op, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(headerRequestID, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug(ctx, "request failed",
			logger.String("op", req.op), logger.String("request_id", requestID), logger.Error(err))
		return 0, nil, &model.TransportError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &model.TransportError{Op: req.op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.StatusCode, body)
		c.logger.Debug(ctx, "service returned an error",
			logger.String("op", req.op), logger.String("request_id", requestID),
			logger.Int("status", resp.StatusCode), logger.String("message", msg))
		return resp.StatusCode, nil, &model.RemoteProcessingError{Status: resp.StatusCode, Message: msg}
	}
	return resp.StatusCode, body, nil
}

// doJSON sends a JSON body.
func (c *Client) doJSON(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: could not marshal request body: %w", op, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, request{op: op, method: method, path: path, body: body, contentType: contentType})
}

// errorBody is the service's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorMessage extracts the structured error message from body, falling back to the status text.
func errorMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "HTTP " + strconv.Itoa(status)
}

// envelope is the common success shape of registry responses.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// failed reports a 2xx body that still marks the call as unsuccessful.
func (e envelope) failed(status int, fallback string) error {
	if e.Success == nil || *e.Success {
		return nil
	}
	msg := e.Error
	if msg == "" {
		msg = fallback
	}
	return &model.RemoteProcessingError{Status: status, Message: msg}
}
