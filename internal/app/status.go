package app

import "time"

// CameraState is the lifecycle of the camera as shown to the user.
type CameraState string

const (
	CameraInitializing CameraState = "initializing"
	CameraActive       CameraState = "active"
	CameraUnavailable  CameraState = "unavailable"
)

// Status is the snapshot of everything the page shows outside the registry.
type Status struct {
	CameraState     CameraState `json:"camera_state"`
	StatusText      string      `json:"status_text"`
	OverlayMessage  string      `json:"overlay_message,omitempty"`
	Blocking        bool        `json:"blocking"`
	LastRecognition string      `json:"last_recognition"`
	DetectedFaces   int         `json:"detected_faces"`
	KnownFaces      int         `json:"known_faces"`
	SessionID       string      `json:"session_id,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
