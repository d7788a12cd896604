package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static
var staticFiles embed.FS

// HandleStatic serves the embedded single-page interface.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	root, err := fs.Sub(staticFiles, "static")
	if err != nil {
		h.writeError(w, "Static assets unavailable", http.StatusInternalServerError)
		return
	}

	filepath := strings.TrimPrefix(r.URL.Path, "/")
	if filepath == "" {
		filepath = "index.html"
	}
	if _, err := fs.Stat(root, filepath); err != nil {
		filepath = "index.html"
	}

	http.ServeFileFS(w, r, root, filepath)
}

// HandleUploads serves stored product photos for preview. Directory listings are refused.
func (h *Handler) HandleUploads(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/") || strings.Contains(r.URL.Path, "..") {
		http.NotFound(w, r)
		return
	}
	http.StripPrefix(uploadsURL, http.FileServer(http.Dir(h.uploadsDir))).ServeHTTP(w, r)
}
