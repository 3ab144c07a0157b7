package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/facecam/internal/app"
	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/internal/domain/validation"
	"github.com/okian/facecam/pkg/logger"
)

const (
	opAddFace     = "preview.faces.add"
	opDeleteFace  = "preview.faces.delete"
	opRefresh     = "preview.faces.refresh"
	formMaxMemory = 4 << 20
	// bodyLimit leaves room for the multipart envelope around the largest accepted file.
	bodyLimit = validation.MaxFileSize + 1<<20
)

// handleListFaces handles GET /api/faces with the cached registry view.
func (s *Server) handleListFaces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newFacesResponse(s.session.Registry()))
}

// handleRefreshFaces handles POST /api/faces/refresh.
func (s *Server) handleRefreshFaces(w http.ResponseWriter, r *http.Request) {
	v, err := s.session.ListFaces(r.Context())
	if err != nil {
		s.logger.Warn(r.Context(), "refresh failed", logger.String("op", opRefresh), logger.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFacesResponse(v))
}

// handleAddFace handles POST /api/faces with multipart fields name and file.
func (s *Server) handleAddFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	name, file, err := readUpload(r)
	if err != nil {
		s.logger.Debug(ctx, "upload rejected", logger.String("op", opAddFace), logger.Error(err))
		writeError(w, err)
		return
	}

	msg, err := s.session.AddFace(ctx, name, file)
	if err != nil {
		s.logger.Warn(ctx, "add face failed", logger.String("op", opAddFace), logger.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg, Registry: newFacesResponse(s.session.Registry())})
}

// readUpload extracts the name and image from a multipart request. The content
// type is taken from the image bytes, falling back to the part header.
func readUpload(r *http.Request) (string, *model.UploadFile, error) {
	if err := r.ParseMultipartForm(formMaxMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, &model.ValidationError{Field: "file", Message: validation.MsgTooLarge}
		}
		return "", nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	name := r.FormValue("name")
	f, hdr, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return name, nil, nil
		}
		return "", nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading file: %w", ErrBadRequest, err)
	}

	contentType := validation.ContentType(data)
	if contentType == "" {
		contentType = hdr.Header.Get("Content-Type")
	}
	return name, &model.UploadFile{Filename: hdr.Filename, ContentType: contentType, Data: data}, nil
}

// handleDeleteFace handles DELETE /api/faces/{filename}. The deletion only goes
// ahead with confirm=true.
func (s *Server) handleDeleteFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := chi.URLParam(r, "filename")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	msg, err := s.session.DeleteFace(ctx, filename, app.ConfirmFunc(func(context.Context, string) bool {
		return confirmed
	}))
	if err != nil {
		s.logger.Warn(ctx, "delete face failed",
			logger.String("op", opDeleteFace),
			logger.String("filename", filename),
			logger.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg, Registry: newFacesResponse(s.session.Registry())})
}
