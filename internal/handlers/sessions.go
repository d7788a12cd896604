package handlers

import (
	"net/http"
	"sort"

	"github.com/MalinduDS/styleshot/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.catalog)
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	sessionList := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, session.Snapshot())
	}
	sort.Slice(sessionList, func(i, j int) bool {
		return sessionList[i].CreatedAt.Before(sessionList[j].CreatedAt)
	})
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.createSession()
	h.writeJSONStatus(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.writeJSON(w, session.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, ok := h.getSessionOrError(w, sessionID); !ok {
		return
	}
	h.sessionStore.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
