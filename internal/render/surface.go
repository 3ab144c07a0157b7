// Package render implements the raster the camera frames and overlays are drawn on.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// DefaultQuality is the JPEG quality used when callers pass 0.
const DefaultQuality = 80

const dataURIPrefix = "data:image/jpeg;base64,"

// ErrEmptySurface is returned when encoding a surface with no pixels.
var ErrEmptySurface = errors.New("render: empty surface")

// Surface is an RGBA raster sized to the negotiated camera resolution.
// All methods are safe for concurrent use.
type Surface struct {
	mu     sync.Mutex
	img    *image.RGBA
	scaler draw.Transformer
	face   font.Face
}

// New creates a transparent surface of the given size.
func New(size image.Point, opts ...Option) *Surface {
	s := &Surface{
		img:    image.NewRGBA(image.Rectangle{Max: size}),
		scaler: draw.ApproxBiLinear,
		face:   basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the surface dimensions.
func (s *Surface) Size() image.Point {
	return s.img.Rect.Size()
}

// DrawMirroredFrame clears the surface and paints frame flipped horizontally,
// scaled to the full surface: x' = W - x*(W/w), y' = y*(H/h).
func (s *Surface) DrawMirroredFrame(frame image.Image) {
	if frame == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draw.Draw(s.img, s.img.Rect, image.Transparent, image.Point{}, draw.Src)

	sr := frame.Bounds()
	if sr.Empty() || s.img.Rect.Empty() {
		return
	}
	W, H := float64(s.img.Rect.Dx()), float64(s.img.Rect.Dy())
	sx := W / float64(sr.Dx())
	sy := H / float64(sr.Dy())
	s2d := f64.Aff3{
		-sx, 0, W + sx*float64(sr.Min.X),
		0, sy, -sy * float64(sr.Min.Y),
	}
	s.scaler.Transform(s.img, s2d, frame, sr, draw.Src, nil)
}

// EncodeJPEG writes the surface as JPEG. quality 0 means DefaultQuality.
func (s *Surface) EncodeJPEG(w io.Writer, quality int) error {
	if quality <= 0 {
		quality = DefaultQuality
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img.Rect.Empty() {
		return ErrEmptySurface
	}
	if err := jpeg.Encode(w, s.img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("render: encode jpeg: %w", err)
	}
	return nil
}

// EncodeDataURI returns the surface as a base64 JPEG data URI.
func (s *Surface) EncodeDataURI(quality int) (string, error) {
	var buf bytes.Buffer
	if err := s.EncodeJPEG(&buf, quality); err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// StrokeRect draws the outline of r with a line of the given width centered on its edges.
func (s *Surface) StrokeRect(r image.Rectangle, width int, c color.Color) {
	if width <= 0 {
		return
	}
	outer := r.Inset(-width / 2)
	inner := outer.Inset(width)
	src := image.NewUniform(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if inner.Empty() {
		draw.Draw(s.img, outer, src, image.Point{}, draw.Over)
		return
	}
	bands := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), // top
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), // bottom
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), // left
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), // right
	}
	for _, b := range bands {
		draw.Draw(s.img, b, src, image.Point{}, draw.Over)
	}
}

// FillRect composites c over r.
func (s *Surface) FillRect(r image.Rectangle, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// MeasureText returns the advance width of text in pixels.
func (s *Surface) MeasureText(text string) int {
	return font.MeasureString(s.face, text).Ceil()
}

// DrawText draws text with its baseline starting at pt.
func (s *Surface) DrawText(pt image.Point, text string, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(text)
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}
