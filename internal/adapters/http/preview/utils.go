package preview

import (
	"encoding/json"
	"net/http"

	"github.com/okian/facecam/internal/app"
	"github.com/okian/facecam/internal/domain/model"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type facesResponse struct {
	app.RegistryView
	DeleteEnabled bool `json:"delete_enabled"`
}

type messageResponse struct {
	Message  string        `json:"message"`
	Registry facesResponse `json:"registry"`
}

func newFacesResponse(v app.RegistryView) facesResponse {
	return facesResponse{RegistryView: v, DeleteEnabled: v.DeleteEnabled()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err with the status its kind maps to. User-facing messages
// carried by the error win over its text.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := model.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
