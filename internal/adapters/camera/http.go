package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/facecam/pkg/logger"
)

const maxFrameBytes = 32 << 20

// HTTPSource reads a network camera. A multipart/x-mixed-replace response is
// read as an MJPEG stream; a plain image response is polled as a snapshot endpoint.
type HTTPSource struct {
	url  string
	opts *options
}

// NewHTTPSource creates a source for the camera at rawURL.
func NewHTTPSource(rawURL string, opts ...Option) *HTTPSource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &HTTPSource{url: rawURL, opts: o}
}

// Open connects to the camera and waits for the first frame.
func (s *HTTPSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	target, err := withSizeHints(s.url, c)
	if err != nil {
		return nil, unavailable(fmt.Errorf("camera: bad url: %w", err))
	}

	streamCtx, cancel := context.WithCancel(ctx)
	resp, err := s.get(streamCtx, target)
	if err != nil {
		cancel()
		return nil, err
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		_ = resp.Body.Close()
		cancel()
		return nil, unavailable(fmt.Errorf("%w: %w", ErrUnsupportedStream, err))
	}

	switch {
	case mediaType == "multipart/x-mixed-replace" && params["boundary"] != "":
		return s.openMJPEG(streamCtx, cancel, resp, params["boundary"])
	case strings.HasPrefix(mediaType, "image/"):
		return s.openSnapshot(streamCtx, cancel, resp, target)
	default:
		_ = resp.Body.Close()
		cancel()
		return nil, unavailable(fmt.Errorf("%w: %s", ErrUnsupportedStream, mediaType))
	}
}

func (s *HTTPSource) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, unavailable(err)
	}
	req.Header.Set("Accept", "multipart/x-mixed-replace, image/jpeg")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.opts.client.Do(req)
	if err != nil {
		return nil, unavailable(fmt.Errorf("camera: connect: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, statusError(resp.StatusCode)
	}
	return resp, nil
}

func (s *HTTPSource) openMJPEG(ctx context.Context, cancel context.CancelFunc, resp *http.Response, boundary string) (Stream, error) {
	mr := multipart.NewReader(resp.Body, boundary)

	first, err := nextFrame(mr)
	if err != nil {
		_ = resp.Body.Close()
		cancel()
		return nil, unavailable(fmt.Errorf("%w: %w", ErrNoFrame, err))
	}

	st := &liveStream{size: first.Bounds().Size(), cancel: cancel, done: make(chan struct{})}
	st.frames.store(first)

	go func() {
		defer close(st.done)
		defer resp.Body.Close()
		// Unblocks NextPart when the stream is closed.
		stop := context.AfterFunc(ctx, func() { _ = resp.Body.Close() })
		defer stop()

		for {
			img, err := nextFrame(mr)
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, io.EOF) {
					s.opts.logger.Warn(ctx, "mjpeg stream ended", logger.Error(err))
				}
				return
			}
			st.frames.store(img)
		}
	}()

	s.opts.logger.Info(ctx, "mjpeg camera opened",
		logger.Int("width", st.size.X), logger.Int("height", st.size.Y))
	return st, nil
}

// nextFrame reads parts until one decodes. Parts that fail to decode are skipped;
// read errors end the stream.
func nextFrame(mr *multipart.Reader) (image.Image, error) {
	var buf bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		buf.Reset()
		_, err = io.Copy(&buf, io.LimitReader(part, maxFrameBytes))
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			continue
		}
		return img, nil
	}
}

func (s *HTTPSource) openSnapshot(ctx context.Context, cancel context.CancelFunc, resp *http.Response, target string) (Stream, error) {
	first, _, err := image.Decode(io.LimitReader(resp.Body, maxFrameBytes))
	_ = resp.Body.Close()
	if err != nil {
		cancel()
		return nil, unavailable(fmt.Errorf("%w: %w", ErrNoFrame, err))
	}

	st := &liveStream{size: first.Bounds().Size(), cancel: cancel, done: make(chan struct{})}
	st.frames.store(first)

	go func() {
		defer close(st.done)
		ticker := time.NewTicker(s.opts.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				img, err := s.snapshot(ctx, target)
				if err != nil {
					if ctx.Err() == nil {
						s.opts.logger.Debug(ctx, "snapshot poll failed", logger.Error(err))
					}
					continue
				}
				st.frames.store(img)
			}
		}
	}()

	s.opts.logger.Info(ctx, "snapshot camera opened",
		logger.Int("width", st.size.X), logger.Int("height", st.size.Y),
		logger.Duration("poll", s.opts.pollInterval))
	return st, nil
}

func (s *HTTPSource) snapshot(ctx context.Context, target string) (image.Image, error) {
	resp, err := s.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxFrameBytes))
	return img, err
}

// withSizeHints adds width/height query parameters unless already present.
func withSizeHints(raw string, c Constraints) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute url: %q", raw)
	}
	q := u.Query()
	if c.Width > 0 && q.Get("width") == "" {
		q.Set("width", strconv.Itoa(c.Width))
	}
	if c.Height > 0 && q.Get("height") == "" {
		q.Set("height", strconv.Itoa(c.Height))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
