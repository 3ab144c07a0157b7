package render

import (
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Option configures a Surface.
type Option func(*Surface)

// WithInterpolator sets the scaler used when the frame and surface sizes differ.
func WithInterpolator(t draw.Transformer) Option {
	return func(s *Surface) {
		if t != nil {
			s.scaler = t
		}
	}
}

// WithFace sets the font face used for labels.
func WithFace(face font.Face) Option {
	return func(s *Surface) {
		if face != nil {
			s.face = face
		}
	}
}
