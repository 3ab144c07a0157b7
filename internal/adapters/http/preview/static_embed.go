package preview

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// pageFS exposes a sub-filesystem rooted at static/.
var pageFS fs.FS = func() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}()

// handlePage handles GET / with the embedded preview page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, pageFS, "index.html")
}
