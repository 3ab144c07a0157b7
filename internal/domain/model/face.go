// Package model contains domain models passed between layers.
package model

import "image"

// UnknownName is the default sentinel the recognition service uses for unmatched faces.
const UnknownName = "Unknown"

// Box is a face bounding box in unmirrored source-frame pixels.
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Detection is one face returned by the recognition service.
type Detection struct {
	Box        Box      `json:"box"`
	Name       string   `json:"name"`
	Confidence *float64 `json:"confidence,omitempty"` // nil when the service omits it
}

// HasConfidence reports whether a nonzero confidence was supplied.
func (d Detection) HasConfidence() bool {
	return d.Confidence != nil && *d.Confidence > 0
}

// Result is an ordered list of detections for one frame.
type Result struct {
	Faces []Detection `json:"faces"`
}

// Count returns the number of detections.
func (r Result) Count() int { return len(r.Faces) }

// KnownFace is a registry entry. Filename is the unique key.
type KnownFace struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// UploadFile is an image selected for registration.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload size in bytes.
func (f *UploadFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}
