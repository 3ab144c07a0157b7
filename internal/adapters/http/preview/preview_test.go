package preview_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/facecam/internal/adapters/http/preview"
	"github.com/okian/facecam/internal/app"
	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockSession records calls and returns canned results.
type mockSession struct {
	frames    *app.Frames
	status    app.Status
	view      app.RegistryView
	listErr   error
	addErr    error
	deleteErr error

	addedName   string
	added       *model.UploadFile
	deleteCalls int
	prompts     []string
}

func newMockSession() *mockSession {
	return &mockSession{
		frames: app.NewFrames(),
		status: app.Status{CameraState: app.CameraActive, StatusText: "Camera active. Detecting faces..."},
		view: app.RegistryView{
			Options: []app.FaceOption{
				{Label: "Select a face to delete"},
				{Value: "alice.jpg", Label: "Alice", Confirm: `Deseja realmente excluir o rosto "Alice"? Esta ação é irreversível.`},
			},
			Count: 1,
		},
	}
}

func (m *mockSession) Status() app.Status         { return m.status }
func (m *mockSession) Registry() app.RegistryView { return m.view }
func (m *mockSession) Frames() *app.Frames        { return m.frames }

func (m *mockSession) ListFaces(context.Context) (app.RegistryView, error) {
	if m.listErr != nil {
		return app.RegistryView{}, m.listErr
	}
	return m.view, nil
}

func (m *mockSession) AddFace(_ context.Context, name string, file *model.UploadFile) (string, error) {
	m.addedName, m.added = name, file
	if m.addErr != nil {
		return "", m.addErr
	}
	return "Face added successfully", nil
}

func (m *mockSession) DeleteFace(ctx context.Context, filename string, c app.Confirmer) (string, error) {
	prompt := "delete " + filename
	m.prompts = append(m.prompts, prompt)
	if !c.Confirm(ctx, prompt) {
		return "", model.ErrNotConfirmed
	}
	m.deleteCalls++
	if m.deleteErr != nil {
		return "", m.deleteErr
	}
	return "Face deleted successfully", nil
}

func do(h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func noisyJPEG() []byte {
	rng := rand.New(rand.NewSource(3))
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Intn(256))
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	return buf.Bytes()
}

func uploadBody(name, filename string, data []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if name != "" {
		_ = mw.WriteField("name", name)
	}
	if data != nil {
		part, _ := mw.CreateFormFile("file", filename)
		_, _ = part.Write(data)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestStatusAndFrames(t *testing.T) {
	Convey("Given a preview server", t, func() {
		sess := newMockSession()
		h := preview.NewServer(sess).Handler()

		Convey("GET / serves the preview page", func() {
			rec := do(h, http.MethodGet, "/", nil, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			So(rec.Body.String(), ShouldContainSubstring, `src="/stream"`)
			So(rec.Body.String(), ShouldContainSubstring, "dataset.confirm")
			So(rec.Body.String(), ShouldNotContainSubstring, "Are you sure")
		})

		Convey("GET /healthz serves Prometheus metrics", func() {
			rec := do(h, http.MethodGet, "/healthz", nil, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "facecam_client_")
		})

		Convey("GET /api/status returns the session status", func() {
			rec := do(h, http.MethodGet, "/api/status", nil, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["status_text"], ShouldEqual, "Camera active. Detecting faces...")
			So(body["camera_state"], ShouldEqual, "active")
		})

		Convey("GET /frame.jpg before the first cycle has no content", func() {
			rec := do(h, http.MethodGet, "/frame.jpg", nil, "")
			So(rec.Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("GET /frame.jpg after a cycle returns the latest frame", func() {
			sess.frames.Publish([]byte("jpeg-bytes"))
			rec := do(h, http.MethodGet, "/frame.jpg", nil, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "image/jpeg")
			So(rec.Body.String(), ShouldEqual, "jpeg-bytes")
		})
	})
}

func TestStream(t *testing.T) {
	Convey("Given a preview server with a published frame", t, func() {
		sess := newMockSession()
		sess.frames.Publish([]byte("first-frame"))
		srv := httptest.NewServer(preview.NewServer(sess).Handler())
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
		So(err, ShouldBeNil)
		resp, err := http.DefaultClient.Do(req)
		So(err, ShouldBeNil)
		defer resp.Body.Close()

		Convey("Then parts carry the latest frames", func() {
			sess.frames.Publish([]byte("second-frame"))

			mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
			So(err, ShouldBeNil)
			So(mediaType, ShouldEqual, "multipart/x-mixed-replace")

			mr := multipart.NewReader(resp.Body, params["boundary"])
			part, err := mr.NextPart()
			So(err, ShouldBeNil)
			So(part.Header.Get("Content-Type"), ShouldEqual, "image/jpeg")
			data, err := io.ReadAll(part)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "first-frame")

			// The second part ends at the next boundary, so only its header is read.
			part, err = mr.NextPart()
			So(err, ShouldBeNil)
			So(part.Header.Get("Content-Length"), ShouldEqual, "12")
		})
	})
}

func TestFaces(t *testing.T) {
	Convey("Given a preview server", t, func() {
		sess := newMockSession()
		h := preview.NewServer(sess).Handler()

		Convey("GET /api/faces returns the registry view", func() {
			rec := do(h, http.MethodGet, "/api/faces", nil, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["count"], ShouldEqual, 1.0)
			So(body["delete_enabled"], ShouldEqual, false)
			So(body["options"], ShouldHaveLength, 2)

			opts := body["options"].([]any)
			So(opts[0].(map[string]any)["confirm"], ShouldBeNil)
			So(opts[1].(map[string]any)["confirm"], ShouldEqual, `Deseja realmente excluir o rosto "Alice"? Esta ação é irreversível.`)
		})

		Convey("POST /api/faces/refresh reports a transport failure as 503", func() {
			sess.listErr = &model.TransportError{Op: "list faces", Err: errors.New("dial tcp: refused")}
			rec := do(h, http.MethodPost, "/api/faces/refresh", nil, "")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decode(rec)["code"], ShouldEqual, "transport_error")
		})

		Convey("POST /api/faces sniffs the image type", func() {
			body, ct := uploadBody("Carol", "carol.jpg", noisyJPEG())
			rec := do(h, http.MethodPost, "/api/faces", body, ct)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["message"], ShouldEqual, "Face added successfully")
			So(sess.addedName, ShouldEqual, "Carol")
			So(sess.added, ShouldNotBeNil)
			So(sess.added.ContentType, ShouldEqual, "image/jpeg")
			So(sess.added.Filename, ShouldEqual, "carol.jpg")
		})

		Convey("POST /api/faces without a file passes nil to validation", func() {
			sess.addErr = &model.ValidationError{Field: "name", Message: "Please provide both name and image."}
			body, ct := uploadBody("Carol", "", nil)
			rec := do(h, http.MethodPost, "/api/faces", body, ct)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(sess.added, ShouldBeNil)
			So(decode(rec)["message"], ShouldEqual, "Please provide both name and image.")
		})

		Convey("POST /api/faces that is not multipart is a bad request", func() {
			rec := do(h, http.MethodPost, "/api/faces", strings.NewReader("{}"), "application/json")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("DELETE without confirmation is refused before any call", func() {
			rec := do(h, http.MethodDelete, "/api/faces/alice.jpg", nil, "")
			So(rec.Code, ShouldEqual, http.StatusConflict)
			So(sess.deleteCalls, ShouldEqual, 0)
			So(sess.prompts, ShouldResemble, []string{"delete alice.jpg"})
		})

		Convey("DELETE with confirmation deletes the face", func() {
			rec := do(h, http.MethodDelete, "/api/faces/alice.jpg?confirm=true", nil, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(sess.deleteCalls, ShouldEqual, 1)
			So(decode(rec)["message"], ShouldEqual, "Face deleted successfully")
		})

		Convey("DELETE rejected by the service is a bad gateway with its message", func() {
			sess.deleteErr = &model.RemoteProcessingError{Status: 404, Message: "File not found"}
			rec := do(h, http.MethodDelete, "/api/faces/ghost.jpg?confirm=true", nil, "")
			So(rec.Code, ShouldEqual, http.StatusBadGateway)
			So(decode(rec)["message"], ShouldEqual, "File not found")
		})
	})
}
