// Package camera acquires frames from a camera-like source and exposes the latest one.
package camera

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	// Frame decoders.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Constraints is the preferred capture resolution. Sources may ignore it;
// the negotiated size is always taken from the first frame.
type Constraints struct {
	Width  int
	Height int
}

// Source opens camera streams.
type Source interface {
	// Open blocks until the first frame is available. Failures are *model.PermissionError
	// and are terminal.
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is an open camera feed.
type Stream interface {
	// Size is the negotiated frame size.
	Size() image.Point
	// Frame returns the latest frame, or nil if none is available.
	Frame() image.Image
	// Close stops the feed and releases its resources.
	Close() error
}

// frameHolder is shared between a stream and its reader goroutine.
type frameHolder struct {
	latest atomic.Pointer[image.Image]
	count  atomic.Int64
}

func (h *frameHolder) store(img image.Image) {
	h.latest.Store(&img)
	h.count.Add(1)
}

func (h *frameHolder) load() image.Image {
	p := h.latest.Load()
	if p == nil {
		return nil
	}
	return *p
}

// liveStream is fed by a background reader until closed.
type liveStream struct {
	frames frameHolder
	size   image.Point

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func (s *liveStream) Size() image.Point  { return s.size }
func (s *liveStream) Frame() image.Image { return s.frames.load() }

// Frames returns how many frames the reader has decoded.
func (s *liveStream) Frames() int64 { return s.frames.count.Load() }

func (s *liveStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}
