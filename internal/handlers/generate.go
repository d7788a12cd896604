package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// HandleGenerate runs one generation for the session and returns the updated view.
// The request blocks until the provider answers. A client that goes away does not
// cancel the generation; the result is still published to the session.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if _, err := session.Generate(context.WithoutCancel(r.Context())); err != nil {
		h.writeStudioError(w, err)
		return
	}
	h.writeJSON(w, session.Snapshot())
}

func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := session.Result()
	if err != nil {
		h.writeStudioError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(res.Data); err != nil {
		slog.Error("Unable to write generated image", "session_id", session.ID(), "err", err)
	}
}

// HandleExport downloads the current result resized to a catalog preset.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	file, err := session.Export(r.Context(), chi.URLParam(r, "preset"))
	if err != nil {
		h.writeStudioError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	if _, err := w.Write(file.Data); err != nil {
		slog.Error("Unable to write export", "session_id", session.ID(), "preset", file.Preset.Key, "err", err)
	}
	slog.Info("Image exported", "session_id", session.ID(), "preset", file.Preset.Key, "filename", file.Name)
}
