// Package preview serves the session's status, composited frames and face
// registry over HTTP.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/okian/facecam/internal/app"
	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/pkg/logger"
)

const (
	defaultAddr            = ":8090"
	defaultShutdownTimeout = 5 * time.Second
)

// Session is what the handlers need from the client session.
type Session interface {
	Status() app.Status
	Registry() app.RegistryView
	ListFaces(ctx context.Context) (app.RegistryView, error)
	AddFace(ctx context.Context, name string, file *model.UploadFile) (string, error)
	DeleteFace(ctx context.Context, filename string, confirmer app.Confirmer) (string, error)
	Frames() *app.Frames
}

// Server wires HTTP routes for the preview page.
type Server struct {
	session         Session
	addr            string
	shutdownTimeout time.Duration
	logger          logger.Logger
	router          *chi.Mux
}

// NewServer creates a preview server over session.
func NewServer(session Session, opts ...Option) *Server {
	s := &Server{
		session:         session,
		addr:            defaultAddr,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("preview")
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	s.register(r)
	s.router = r
	return s
}

func (s *Server) register(r chi.Router) {
	r.Get("/", MetricsMiddleware(s.handlePage, "page"))
	r.Get("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	r.Get("/api/status", MetricsMiddleware(s.handleStatus, "status"))
	r.Get("/frame.jpg", MetricsMiddleware(s.handleFrame, "frame"))
	r.Get("/stream", MetricsMiddleware(s.handleStream, "stream"))

	r.Route("/api/faces", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handleListFaces, "faces_list"))
		r.Post("/", MetricsMiddleware(s.handleAddFace, "faces_add"))
		r.Post("/refresh", MetricsMiddleware(s.handleRefreshFaces, "faces_refresh"))
		r.Delete("/{filename}", MetricsMiddleware(s.handleDeleteFace, "faces_delete"))
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "preview server listening", logger.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %w", ErrServe, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down preview server: %w", err)
	}
	s.logger.Info(ctx, "preview server stopped")
	return nil
}
