package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Each typed error below matches one of them via errors.Is.
var (
	ErrPermission   = errors.New("camera unavailable")
	ErrTransport    = errors.New("transport failure")
	ErrRemote       = errors.New("remote processing failed")
	ErrValidation   = errors.New("validation failed")
	ErrNotConfirmed = errors.New("not confirmed")
)

// PermissionError reports that the camera could not be opened.
// Denied is true when access was refused rather than the device being unavailable.
type PermissionError struct {
	Denied bool
	Err    error
}

func (e *PermissionError) Error() string {
	reason := "unavailable"
	if e.Denied {
		reason = "denied"
	}
	if e.Err != nil {
		return fmt.Sprintf("camera access %s: %v", reason, e.Err)
	}
	return "camera access " + reason
}

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }
func (e *PermissionError) Unwrap() error        { return e.Err }

// TransportError reports that the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// RemoteProcessingError reports a response the service marked as failed.
type RemoteProcessingError struct {
	Status  int
	Message string
}

func (e *RemoteProcessingError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
}

func (e *RemoteProcessingError) Is(target error) bool { return target == ErrRemote }

// ValidationError reports a client-side precondition failure. Message is user facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UserMessage extracts the message meant for display, or "" when err carries none.
func UserMessage(err error) string {
	var rpe *RemoteProcessingError
	if errors.As(err, &rpe) {
		return rpe.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ""
}
