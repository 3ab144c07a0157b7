package preview

import (
	"errors"
	"net/http"

	"github.com/okian/facecam/internal/domain/model"
)

// Sentinel kinds for preview server errors.
var (
	ErrServe      = errors.New("preview serve failed")
	ErrBadRequest = errors.New("bad request")
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, model.ErrNotConfirmed):
		return http.StatusConflict, "not_confirmed"
	case errors.Is(err, model.ErrRemote):
		return http.StatusBadGateway, "remote_error"
	case errors.Is(err, model.ErrTransport):
		return http.StatusServiceUnavailable, "transport_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
