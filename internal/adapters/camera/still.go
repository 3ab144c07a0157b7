package camera

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/okian/facecam/pkg/logger"
)

// StillSource serves a single image file as a camera that never changes.
type StillSource struct {
	path string
	opts *options
}

// NewStillSource creates a source backed by the image at path.
func NewStillSource(path string, opts ...Option) *StillSource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &StillSource{path: path, opts: o}
}

// Open decodes the file. Constraints are ignored.
func (s *StillSource) Open(ctx context.Context, _ Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, unavailable(fmt.Errorf("camera: %w", err))
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, unavailable(fmt.Errorf("%w: %s: %w", ErrNoFrame, s.path, err))
	}

	s.opts.logger.Info(ctx, "still camera opened",
		logger.String("path", s.path), logger.String("format", format),
		logger.Int("width", img.Bounds().Dx()), logger.Int("height", img.Bounds().Dy()))
	return &stillStream{img: img}, nil
}

type stillStream struct {
	img image.Image
}

func (s *stillStream) Size() image.Point  { return s.img.Bounds().Size() }
func (s *stillStream) Frame() image.Image { return s.img }
func (s *stillStream) Close() error       { return nil }
