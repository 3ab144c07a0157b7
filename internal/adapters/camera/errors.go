package camera

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/facecam/internal/domain/model"
)

// Sentinel causes wrapped inside *model.PermissionError.
var (
	ErrUnsupportedStream = errors.New("camera: unsupported stream content type")
	ErrNoFrame           = errors.New("camera: no frame received")
)

func unavailable(err error) error {
	return &model.PermissionError{Denied: false, Err: err}
}

func statusError(code int) error {
	err := fmt.Errorf("camera: status %d %s", code, http.StatusText(code))
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return &model.PermissionError{Denied: true, Err: err}
	}
	return unavailable(err)
}
