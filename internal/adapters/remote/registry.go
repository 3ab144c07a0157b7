package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/internal/domain/validation"
	"github.com/okian/facecam/pkg/logger"
	"github.com/okian/facecam/pkg/metrics"
)

const (
	opList   = "list"
	opAdd    = "add"
	opDelete = "delete"
)

type listResponse struct {
	envelope
	Faces []model.KnownFace `json:"faces"`
	Count *int              `json:"count"`
}

// List returns every registered face and the count reported by the service.
func (c *Client) List(ctx context.Context) ([]model.KnownFace, int, error) {
	status, body, err := c.doJSON(ctx, opList, http.MethodGet, c.paths.Faces, nil)
	if err != nil {
		recordRegistry(opList, err)
		return nil, 0, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &model.RemoteProcessingError{Status: status, Message: msgInvalidResponse}
		recordRegistry(opList, err)
		return nil, 0, err
	}
	if err := resp.failed(status, "Failed to get faces"); err != nil {
		recordRegistry(opList, err)
		return nil, 0, err
	}

	count := len(resp.Faces)
	if resp.Count != nil {
		count = *resp.Count
	}
	recordRegistry(opList, nil)
	metrics.UpdateKnownFaces(count)
	return resp.Faces, count, nil
}

type addResponse struct {
	envelope
	Filename string `json:"filename"`
}

// Add validates and uploads a new known face. Validation failures never reach the network.
func (c *Client) Add(ctx context.Context, name string, file *model.UploadFile) (string, error) {
	if err := validation.Upload(name, file); err != nil {
		recordRegistry(opAdd, err)
		return "", err
	}
	name = strings.TrimSpace(name)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", name); err != nil {
		return "", fmt.Errorf("%s: could not write name field: %w", opAdd, err)
	}
	part, err := mw.CreatePart(fileHeader(file))
	if err != nil {
		return "", fmt.Errorf("%s: could not create form file: %w", opAdd, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("%s: could not copy file data: %w", opAdd, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: could not close writer: %w", opAdd, err)
	}

	status, body, err := c.do(ctx, request{
		op:          opAdd,
		method:      http.MethodPost,
		path:        c.paths.Upload,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		recordRegistry(opAdd, err)
		return "", err
	}

	var resp addResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &model.RemoteProcessingError{Status: status, Message: msgInvalidResponse}
		recordRegistry(opAdd, err)
		return "", err
	}
	if err := resp.failed(status, "Upload failed"); err != nil {
		recordRegistry(opAdd, err)
		return "", err
	}

	recordRegistry(opAdd, nil)
	metrics.RecordUploadSize(file.Size())
	c.logger.Info(ctx, "face registered", logger.String("name", name), logger.String("filename", resp.Filename))
	return resp.Message, nil
}

type deleteRequest struct {
	Filename string `json:"filename"`
}

// Delete removes the face stored under filename.
func (c *Client) Delete(ctx context.Context, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		err := &model.ValidationError{Field: "filename", Message: "No filename provided"}
		recordRegistry(opDelete, err)
		return "", err
	}

	status, body, err := c.doJSON(ctx, opDelete, http.MethodDelete, c.paths.Delete, deleteRequest{Filename: filename})
	if err != nil {
		recordRegistry(opDelete, err)
		return "", err
	}

	var resp envelope
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &model.RemoteProcessingError{Status: status, Message: msgInvalidResponse}
		recordRegistry(opDelete, err)
		return "", err
	}
	if err := resp.failed(status, "Delete failed"); err != nil {
		recordRegistry(opDelete, err)
		return "", err
	}

	recordRegistry(opDelete, nil)
	c.logger.Info(ctx, "face deleted", logger.String("filename", filename))
	return resp.Message, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// fileHeader mirrors multipart.CreateFormFile but keeps the file's own content type.
func fileHeader(file *model.UploadFile) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filepath.Base(file.Filename))))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return h
}

func recordRegistry(op string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, model.ErrValidation):
		outcome = metrics.OutcomeInvalid
	case errors.Is(err, model.ErrTransport):
		outcome = metrics.OutcomeTransportError
	default:
		outcome = metrics.OutcomeRemoteError
	}
	metrics.RecordRegistryOp(op, outcome)
}
