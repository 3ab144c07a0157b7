package preview

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/okian/facecam/pkg/logger"
)

// handleFrame handles GET /frame.jpg. Before the first cycle there is nothing to show.
func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame := s.session.Frames().Latest()
	if frame == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(frame)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(frame)
}

// handleStream handles GET /stream as multipart/x-mixed-replace, one JPEG part per cycle.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	frames := s.session.Frames()
	ch, cancel := frames.Subscribe()
	defer cancel()
	latest := frames.Latest()

	mw := multipart.NewWriter(w)
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mw.Boundary())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	write := func(frame []byte) bool {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", "image/jpeg")
		h.Set("Content-Length", strconv.Itoa(len(frame)))
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = part.Write(frame)
		}
		if err != nil {
			s.logger.Debug(ctx, "stream client gone", logger.Error(err))
			return false
		}
		flusher.Flush()
		return true
	}

	if latest != nil && !write(latest) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-ch:
			if !write(frame) {
				return
			}
		}
	}
}
