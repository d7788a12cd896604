package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MalinduDS/styleshot/internal/studio"
	"github.com/go-chi/chi/v5"
)

// HandleUpload creates a new session from an uploaded file or an image URL.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readImage(w, r)
	if !ok {
		return
	}

	session := h.createSession()
	if _, err := session.Upload(filename, data); err != nil {
		h.sessionStore.Delete(session.ID())
		h.writeStudioError(w, err)
		return
	}

	h.writeJSONStatus(w, http.StatusCreated, map[string]any{
		"session_id": session.ID(),
		"message":    "Successfully uploaded 1 image",
		"session":    session.Snapshot(),
	})
}

// HandleSessionUpload replaces the product photo of an existing session.
func (h *Handler) HandleSessionUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	filename, data, ok := h.readImage(w, r)
	if !ok {
		return
	}

	if _, err := session.Upload(filename, data); err != nil {
		h.writeStudioError(w, err)
		return
	}
	h.writeJSON(w, session.Snapshot())
}

// readImage pulls the image bytes out of a multipart form or a JSON {"image_url"} body.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return h.readImageURL(w, r)
	}
	return h.readImageFile(w, r)
}

func (h *Handler) readImageURL(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return "", nil, false
	}

	data, filename, err := h.fetcher.Download(r.Context(), request.ImageURL)
	if err != nil {
		slog.Warn("Failed to fetch image URL", "url", request.ImageURL, "err", err)
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	return filename, data, true
}

func (h *Handler) readImageFile(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024*1024)

	file, header, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return "", nil, false
		}
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}

	if int64(len(fileData)) > h.maxUploadBytes {
		h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	if len(fileData) == 0 {
		h.writeStudioError(w, studio.ErrUnsupportedMedia)
		return "", nil, false
	}

	return header.Filename, fileData, true
}
