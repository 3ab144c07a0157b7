package overlay

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/okian/facecam/internal/domain/model"
)

// LabelFormat selects how a detection label is written.
type LabelFormat string

const (
	// LabelWithConfidence appends " (NN%)" when a nonzero confidence is present.
	LabelWithConfidence LabelFormat = "with_confidence"
	// LabelNameOnly writes the name alone.
	LabelNameOnly LabelFormat = "name_only"
)

// MirrorMode selects how boxes map onto the mirrored surface.
type MirrorMode string

const (
	// MirrorReflect reflects boxes horizontally: left = W - right, right = W - left.
	MirrorReflect MirrorMode = "reflect"
	// MirrorPassThrough draws boxes unmodified, for services that detect on the mirrored frame.
	MirrorPassThrough MirrorMode = "pass_through"
)

// ErrBadColor is returned by ParseHexColor.
var ErrBadColor = errors.New("overlay: bad color")

// ColorScheme holds the box colors for unrecognized and recognized faces.
type ColorScheme struct {
	Warning color.RGBA
	Success color.RGBA
}

// Style parameterizes the renderer.
type Style struct {
	Colors    ColorScheme
	Label     LabelFormat
	Mirror    MirrorMode
	LineWidth int
	// FillAlpha is the opacity of the box fill, 0..255.
	FillAlpha uint8
	// UnknownNames are the sentinels that mark an unrecognized face.
	UnknownNames []string
	// NoFaces is the summary text for an empty result.
	NoFaces string
}

// DefaultStyle returns the standard look: amber for unknown faces, green for known ones.
func DefaultStyle() Style {
	return Style{
		Colors: ColorScheme{
			Warning: color.RGBA{R: 0xff, G: 0xc1, B: 0x07, A: 0xff},
			Success: color.RGBA{R: 0x28, G: 0xa7, B: 0x45, A: 0xff},
		},
		Label:        LabelWithConfidence,
		Mirror:       MirrorReflect,
		LineWidth:    3,
		FillAlpha:    26,
		UnknownNames: []string{model.UnknownName},
		NoFaces:      "No faces detected",
	}
}

// IsUnknown reports whether name is empty or one of the unknown sentinels.
func (s Style) IsUnknown(name string) bool {
	if name == "" {
		return true
	}
	for _, u := range s.UnknownNames {
		if name == u {
			return true
		}
	}
	return false
}

// ParseHexColor parses #rgb or #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
