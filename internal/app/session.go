// Package app wires the camera, recognition loop, overlay and face registry
// into a single client session.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/facecam/internal/adapters/camera"
	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/internal/domain/validation"
	"github.com/okian/facecam/internal/overlay"
	"github.com/okian/facecam/internal/render"
	"github.com/okian/facecam/internal/scheduler"
	"github.com/okian/facecam/pkg/logger"
	"github.com/okian/facecam/pkg/metrics"
)

const (
	defaultInterval  = 500 * time.Millisecond
	defaultRefreshHz = 60
	defaultQuality   = 80
	defaultWidth     = 1280
	defaultHeight    = 720
)

// Recognizer sends one encoded frame to the recognition service.
type Recognizer interface {
	SendFrame(ctx context.Context, dataURI string) (model.Result, error)
}

// Registry is the remote store of known faces.
type Registry interface {
	List(ctx context.Context) ([]model.KnownFace, int, error)
	Add(ctx context.Context, name string, file *model.UploadFile) (string, error)
	Delete(ctx context.Context, filename string) (string, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Session owns the loop state of one camera session and the registry view.
type Session struct {
	source     camera.Source
	recognizer Recognizer
	registry   Registry

	locale      Locale
	style       *overlay.Style
	renderer    *overlay.Renderer
	constraints camera.Constraints
	interval    time.Duration
	refreshHz   int
	manual      bool
	quality     int
	frames      *Frames
	now         func() time.Time
	logger      logger.Logger

	mu     sync.RWMutex
	status Status
	view   RegistryView

	// runMu guards the fields below. Cycles launched by the scheduler use the
	// stream and surface bound at Start and never take it.
	runMu   sync.Mutex
	stream  camera.Stream
	surface *render.Surface
	state   *scheduler.State
	sched   *scheduler.Scheduler
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a session. Nothing is opened until Start.
func New(source camera.Source, recognizer Recognizer, registry Registry, opts ...Option) *Session {
	s := &Session{
		source:      source,
		recognizer:  recognizer,
		registry:    registry,
		constraints: camera.Constraints{Width: defaultWidth, Height: defaultHeight},
		interval:    defaultInterval,
		refreshHz:   defaultRefreshHz,
		quality:     defaultQuality,
		now:         time.Now,
	}
	s.locale, _ = LocaleFor("en")

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("session")
	}
	if s.frames == nil {
		s.frames = NewFrames()
	}
	style := overlay.DefaultStyle()
	if s.style != nil {
		style = *s.style
	}
	s.renderer = overlay.New(s.locale.Apply(style))

	s.status = Status{
		CameraState:    CameraInitializing,
		StatusText:     s.locale.RequestingCamera,
		OverlayMessage: s.locale.WaitingCamera,
		UpdatedAt:      s.now(),
	}
	s.view = newRegistryView(nil, 0, s.locale, "")
	return s
}

// Locale returns the session's strings.
func (s *Session) Locale() Locale { return s.locale }

// Frames returns the broadcaster of composited frames.
func (s *Session) Frames() *Frames { return s.frames }

// Start opens the camera, prepares the surface, loads the registry and starts the
// recognition loop. A camera failure leaves a blocking status and is returned.
func (s *Session) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stream != nil {
		return ErrAlreadyStarted
	}

	s.updateStatus(func(st *Status) {
		st.CameraState = CameraInitializing
		st.StatusText = s.locale.RequestingCamera
		st.OverlayMessage = s.locale.WaitingCamera
		st.Blocking = false
	})

	stream, err := s.source.Open(ctx, s.constraints)
	if err != nil {
		s.updateStatus(func(st *Status) {
			st.CameraState = CameraUnavailable
			st.StatusText = s.locale.CameraDenied
			st.OverlayMessage = s.locale.PermissionHint
			st.Blocking = true
		})
		metrics.UpdateCameraActive(false)
		metrics.RecordError("camera", "open")
		s.logger.Error(ctx, "camera unavailable", logger.Error(err))
		return fmt.Errorf("open camera: %w", err)
	}

	size := stream.Size()
	surface := render.New(size)
	s.stream = stream
	s.surface = surface
	s.state = scheduler.NewState(s.interval)
	s.sched = scheduler.New(s.state, func(ctx context.Context) error {
		return s.process(ctx, stream, surface)
	},
		scheduler.WithRefreshRate(s.refreshHz),
		scheduler.WithClock(s.now),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	)

	id := uuid.NewString()
	s.updateStatus(func(st *Status) {
		st.CameraState = CameraActive
		st.StatusText = s.locale.CameraActive
		st.OverlayMessage = ""
		st.SessionID = id
	})
	metrics.UpdateCameraActive(true)
	s.logger.Info(ctx, "camera active",
		logger.String("session", id),
		logger.Int("width", size.X),
		logger.Int("height", size.Y))

	if _, err := s.ListFaces(ctx); err != nil {
		s.logger.Warn(ctx, "initial registry load failed", logger.Error(err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(sched *scheduler.Scheduler, done chan struct{}) {
		defer close(done)
		if s.manual {
			<-runCtx.Done()
			return
		}
		sched.Run(runCtx)
	}(s.sched, s.done)
	return nil
}

// Done is closed when the recognition loop has stopped. It is nil before Start.
func (s *Session) Done() <-chan struct{} {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.done
}

// Stop ends the loop, waits for the in-flight cycle and closes the camera.
func (s *Session) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stream == nil {
		return
	}
	s.cancel()
	<-s.done

	if err := s.stream.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing camera", logger.Error(err))
	}
	s.stream = nil
	s.surface = nil
	s.sched = nil
	metrics.UpdateCameraActive(false)
	s.logger.Info(context.Background(), "session stopped")
}

// Cycle runs one recognition cycle now if the loop state admits it. It shares
// the busy flag and interval with the scheduler, so it returns ErrCycleBusy
// while another cycle is in flight and ErrCycleThrottled within one interval
// of the last start.
func (s *Session) Cycle(ctx context.Context) error {
	s.runMu.Lock()
	stream, surface, state := s.stream, s.surface, s.state
	s.runMu.Unlock()

	if stream == nil {
		return ErrNotStarted
	}

	d := state.TryBegin(s.now())
	metrics.RecordSchedulerDecision(d.String())
	switch d {
	case scheduler.Busy:
		return ErrCycleBusy
	case scheduler.Throttled:
		return ErrCycleThrottled
	}
	defer state.Finish()
	return s.process(ctx, stream, surface)
}

func (s *Session) process(ctx context.Context, stream camera.Stream, surface *render.Surface) error {
	frame := stream.Frame()
	if frame == nil {
		return nil
	}

	surface.DrawMirroredFrame(frame)
	metrics.RecordFrameCaptured()

	uri, err := surface.EncodeDataURI(s.quality)
	if err != nil {
		s.cycleFailed(err)
		return fmt.Errorf("encode frame: %w", err)
	}

	res, err := s.recognizer.SendFrame(ctx, uri)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.cycleFailed(err)
		s.publish(ctx, surface)
		return err
	}

	sum := s.renderer.Render(surface, frame, res)
	s.updateStatus(func(st *Status) {
		st.StatusText = s.locale.CameraActive
		st.LastRecognition = sum.Text
		st.DetectedFaces = sum.Count
	})
	s.publish(ctx, surface)
	return nil
}

func (s *Session) cycleFailed(err error) {
	last := s.locale.ServerError
	var rpe *model.RemoteProcessingError
	if errors.As(err, &rpe) && rpe.Message != "" {
		last = rpe.Message
	}
	s.updateStatus(func(st *Status) {
		st.StatusText = s.locale.ProcessingError
		st.LastRecognition = last
	})
}

func (s *Session) publish(ctx context.Context, surface *render.Surface) {
	var buf bytes.Buffer
	if err := surface.EncodeJPEG(&buf, s.quality); err != nil {
		s.logger.Debug(ctx, "frame not published", logger.Error(err))
		return
	}
	s.frames.Publish(buf.Bytes())
}

func (s *Session) updateStatus(fn func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
	s.status.UpdatedAt = s.now()
}

// Status returns a snapshot of the session status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Registry returns the current registry view.
func (s *Session) Registry() RegistryView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.view
	v.Options = append([]FaceOption(nil), s.view.Options...)
	return v
}

// ListFaces reloads the registry view. On failure the view shows a disabled
// error entry and the error is returned.
func (s *Session) ListFaces(ctx context.Context) (RegistryView, error) {
	faces, count, err := s.registry.List(ctx)

	s.mu.Lock()
	if err != nil {
		s.view = errorRegistryView(s.locale, err)
	} else {
		s.view = newRegistryView(faces, count, s.locale, s.view.Selected)
		s.status.KnownFaces = count
		s.status.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn(ctx, "loading faces failed", logger.Error(err))
		return s.Registry(), fmt.Errorf("list faces: %w", err)
	}
	return s.Registry(), nil
}

// SelectFace marks filename as the face to delete.
func (s *Session) SelectFace(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if filename == "" {
		s.view.Selected = ""
		return nil
	}
	if _, ok := s.view.option(filename); !ok {
		return &model.ValidationError{Field: "filename", Message: s.locale.SelectFace}
	}
	s.view.Selected = filename
	return nil
}

// AddFace validates and uploads a new face, then reloads the registry.
func (s *Session) AddFace(ctx context.Context, name string, file *model.UploadFile) (string, error) {
	if err := validation.Upload(name, file); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	msg, err := s.registry.Add(ctx, name, file)
	if err != nil {
		return "", fmt.Errorf("add face %q: %w", name, err)
	}
	s.logger.Info(ctx, "face added", logger.String("name", name), logger.String("filename", file.Filename))

	if _, err := s.ListFaces(ctx); err != nil {
		s.logger.Warn(ctx, "reload after add failed", logger.Error(err))
	}
	return msg, nil
}

// DeleteFace removes a registered face once confirmer approves, then reloads
// the registry. Nothing is sent when the confirmation is declined.
func (s *Session) DeleteFace(ctx context.Context, filename string, confirmer Confirmer) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", &model.ValidationError{Field: "filename", Message: s.locale.SelectFace}
	}

	prompt := fmt.Sprintf(s.locale.DeleteConfirm, filename)
	if o, ok := s.Registry().option(filename); ok {
		prompt = o.Confirm
	}
	if confirmer == nil || !confirmer.Confirm(ctx, prompt) {
		return "", model.ErrNotConfirmed
	}

	msg, err := s.registry.Delete(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("delete face %q: %w", filename, err)
	}
	s.logger.Info(ctx, "face deleted", logger.String("filename", filename))

	s.mu.Lock()
	if s.view.Selected == filename {
		s.view.Selected = ""
	}
	s.mu.Unlock()

	if _, err := s.ListFaces(ctx); err != nil {
		s.logger.Warn(ctx, "reload after delete failed", logger.Error(err))
	}
	return msg, nil
}
