// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and FACECAM_ env vars.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"time"
)

// Label formats accepted by LabelFormat.
const (
	LabelWithConfidence = "with_confidence"
	LabelNameOnly       = "name_only"
)

// Mirror modes accepted by MirrorMode.
const (
	MirrorReflect     = "reflect"
	MirrorPassThrough = "pass_through"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ServerURL is the base URL of the recognition service.
	ServerURL string `koanf:"server_url"`

	// Service paths, relative to ServerURL.
	ProcessFramePath string `koanf:"process_frame_path"`
	FacesPath        string `koanf:"faces_path"`
	UploadPath       string `koanf:"upload_path"`
	DeletePath       string `koanf:"delete_path"`

	// CameraURL points at an MJPEG stream. CameraFile is used when it is empty.
	CameraURL  string `koanf:"camera_url"`
	CameraFile string `koanf:"camera_file"`

	// Preferred capture resolution.
	CameraWidth  int `koanf:"camera_width"`
	CameraHeight int `koanf:"camera_height"`

	// IntervalMS is the minimum spacing between recognition cycles.
	IntervalMS int `koanf:"interval_ms"`

	// RefreshHz is the scheduler tick rate.
	RefreshHz int `koanf:"refresh_hz"`

	// JPEGQuality is the frame encoding quality, 1..100.
	JPEGQuality int `koanf:"jpeg_quality"`

	// RequestTimeoutMS bounds each recognition request; 0 disables the bound.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// PreviewAddr is the listen address of the preview server; empty disables it.
	PreviewAddr string `koanf:"preview_addr"`

	// Locale selects user-facing strings: en or pt.
	Locale string `koanf:"locale"`

	// Overlay style.
	ColorWarning string `koanf:"color_warning"`
	ColorSuccess string `koanf:"color_success"`
	LabelFormat  string `koanf:"label_format"`
	MirrorMode   string `koanf:"mirror_mode"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		ServerURL:        "http://localhost:5000",
		ProcessFramePath: "/api/process-frame",
		FacesPath:        "/api/faces",
		UploadPath:       "/api/upload-face",
		DeletePath:       "/api/delete-face",
		CameraWidth:      1280,
		CameraHeight:     720,
		IntervalMS:       500,
		RefreshHz:        60,
		JPEGQuality:      80,
		RequestTimeoutMS: 0,
		PreviewAddr:      ":8090",
		Locale:           "en",
		ColorWarning:     "#ffc107",
		ColorSuccess:     "#28a745",
		LabelFormat:      LabelWithConfidence,
		MirrorMode:       MirrorReflect,
	}
}

// Interval returns IntervalMS as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
