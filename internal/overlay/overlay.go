// Package overlay draws recognition results over the mirrored camera frame.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/pkg/metrics"
)

// Label geometry in surface pixels, relative to the box's display-left and top.
const (
	labelOffsetY  = 28
	labelHeight   = 24
	labelPadding  = 8
	textBaselineY = 10
)

var (
	darkText  = color.RGBA{R: 0x21, G: 0x25, B: 0x29, A: 0xff}
	lightText = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Canvas is the drawing surface the renderer paints on.
type Canvas interface {
	Size() image.Point
	DrawMirroredFrame(frame image.Image)
	StrokeRect(r image.Rectangle, width int, c color.Color)
	FillRect(r image.Rectangle, c color.Color)
	MeasureText(text string) int
	DrawText(pt image.Point, text string, c color.Color)
}

// Summary is the text shown after a cycle.
type Summary struct {
	Text  string
	Count int
	Names []string
}

// Renderer draws detections with a fixed Style.
type Renderer struct {
	style Style
}

// New creates a renderer.
func New(style Style) *Renderer {
	return &Renderer{style: style}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style { return r.style }

// Render repaints frame once, then draws every detection and returns the summary.
func (r *Renderer) Render(c Canvas, frame image.Image, res model.Result) Summary {
	c.DrawMirroredFrame(frame)

	width := c.Size().X
	names := make([]string, 0, len(res.Faces))
	for _, d := range res.Faces {
		r.drawDetection(c, width, d)
		names = append(names, d.Name)
	}

	sum := Summary{Count: len(res.Faces), Names: names}
	if len(names) == 0 {
		sum.Text = r.style.NoFaces
	} else {
		sum.Text = strings.Join(names, ", ")
	}
	metrics.UpdateFacesInFrame(sum.Count)
	return sum
}

func (r *Renderer) drawDetection(c Canvas, width int, d model.Detection) {
	box := DisplayBox(d.Box, width, r.style.Mirror)
	unknown := r.style.IsUnknown(d.Name)
	base := r.style.Colors.Success
	if unknown {
		base = r.style.Colors.Warning
	}
	metrics.RecordFaceLabeled(!unknown)

	c.StrokeRect(box, r.style.LineWidth, base)
	c.FillRect(box, color.NRGBA{R: base.R, G: base.G, B: base.B, A: r.style.FillAlpha})

	text := r.Label(d)
	tw := c.MeasureText(text)
	bg := image.Rect(box.Min.X, box.Min.Y-labelOffsetY, box.Min.X+tw+2*labelPadding, box.Min.Y-labelOffsetY+labelHeight)
	c.FillRect(bg, base)
	c.DrawText(image.Pt(box.Min.X+labelPadding, box.Min.Y-textBaselineY), text, TextColor(base))
}

// Label formats the text drawn above a detection.
func (r *Renderer) Label(d model.Detection) string {
	if r.style.Label == LabelWithConfidence && d.HasConfidence() {
		return fmt.Sprintf("%s (%d%%)", d.Name, int(math.Round(*d.Confidence*100)))
	}
	return d.Name
}

// DisplayBox maps a box in unmirrored source coordinates onto a surface of the given width.
func DisplayBox(b model.Box, width int, mode MirrorMode) image.Rectangle {
	if mode == MirrorPassThrough {
		return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
	}
	return image.Rect(width-b.Right, b.Top, width-b.Left, b.Bottom)
}

// TextColor picks dark text on light backgrounds and white text otherwise,
// using sRGB relative luminance.
func TextColor(bg color.RGBA) color.RGBA {
	if relativeLuminance(bg) > 0.5 {
		return darkText
	}
	return lightText
}

func relativeLuminance(c color.RGBA) float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}
