package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleSelectModel(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var request struct {
		ModelID string `json:"model_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := session.SelectModel(request.ModelID); err != nil {
		h.writeStudioError(w, err)
		return
	}
	h.writeJSON(w, session.Snapshot())
}

// HandleSetScene accepts either freeform text or a catalog background key.
func (h *Handler) HandleSetScene(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var request struct {
		Scene      *string `json:"scene"`
		Background string  `json:"background"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case request.Background != "":
		err = session.SelectBackground(request.Background)
	case request.Scene != nil:
		err = session.SetScene(*request.Scene)
	default:
		h.writeError(w, "scene or background is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeStudioError(w, err)
		return
	}
	h.writeJSON(w, session.Snapshot())
}

// HandleAdjustLighting applies a partial update to the live lighting values. Passing
// "commit": true records the result in the history in the same request.
func (h *Handler) HandleAdjustLighting(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var request struct {
		lighting.Partial
		Commit bool `json:"commit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := session.AdjustLighting(request.Partial); err != nil {
		h.writeStudioError(w, err)
		return
	}
	if request.Commit {
		session.CommitLighting()
	}
	h.writeJSON(w, session.Snapshot())
}

func (h *Handler) HandleLightingHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	switch chi.URLParam(r, "op") {
	case "commit":
		session.CommitLighting()
	case "undo":
		session.UndoLighting()
	case "redo":
		session.RedoLighting()
	default:
		h.writeError(w, "Unknown lighting operation", http.StatusNotFound)
		return
	}
	h.writeJSON(w, session.Snapshot())
}
