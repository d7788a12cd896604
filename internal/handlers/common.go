package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/export"
	"github.com/MalinduDS/styleshot/internal/images"
	"github.com/MalinduDS/styleshot/internal/imagegen"
	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/MalinduDS/styleshot/internal/storage"
	"github.com/MalinduDS/styleshot/internal/studio"
	"github.com/google/uuid"
)

const (
	defaultMaxUploadBytes = 10 * 1024 * 1024
	uploadsURL            = "/uploads"
)

type Handler struct {
	sessionStore   *storage.SessionStore
	catalog        *catalog.Catalog
	pipeline       *imagegen.Pipeline
	exporter       *export.Exporter
	fetcher        *images.Fetcher
	uploadsDir     string
	maxUploadBytes int64
}

type Options struct {
	Store          *storage.SessionStore
	Catalog        *catalog.Catalog
	Pipeline       *imagegen.Pipeline
	UploadsDir     string
	MaxUploadBytes int64
}

func New(opts Options) *Handler {
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	store := opts.Store
	if store == nil {
		store = storage.New(0)
	}
	return &Handler{
		sessionStore:   store,
		catalog:        opts.Catalog,
		pipeline:       opts.Pipeline,
		exporter:       export.New(),
		fetcher:        images.NewFetcher(maxBytes),
		uploadsDir:     opts.UploadsDir,
		maxUploadBytes: maxBytes,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Debug(message, "status", code)
	}
	h.writeJSONStatus(w, code, map[string]string{"error": message})
}

// writeStudioError maps session and pipeline errors to a status code. Pipeline failures
// only ever expose their display message.
func (h *Handler) writeStudioError(w http.ResponseWriter, err error) {
	var genErr *imagegen.Error
	switch {
	case errors.As(err, &genErr):
		code := http.StatusBadGateway
		switch genErr.Kind {
		case imagegen.KindMissingInput:
			code = http.StatusBadRequest
		case imagegen.KindFileRead:
			code = http.StatusInternalServerError
		}
		slog.Warn("Generation request failed", "kind", genErr.Kind.String(), "err", err)
		h.writeJSONStatus(w, code, map[string]string{"error": genErr.Kind.Message()})
	case errors.Is(err, studio.ErrUnsupportedMedia),
		errors.Is(err, studio.ErrSceneTooLong),
		errors.Is(err, studio.ErrUnknownModel),
		errors.Is(err, studio.ErrUnknownBackground),
		errors.Is(err, lighting.ErrOutOfRange):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, studio.ErrUnknownPreset), errors.Is(err, studio.ErrNoResult):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, studio.ErrGenerationInFlight):
		h.writeError(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("Request failed", "err", err)
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*studio.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (h *Handler) createSession() *studio.Session {
	sessionID := uuid.NewString()
	session := studio.New(sessionID, studio.Options{
		Catalog:    h.catalog,
		Pipeline:   h.pipeline,
		Exporter:   h.exporter,
		UploadsDir: h.uploadsDir,
		UploadsURL: uploadsURL,
	})
	h.sessionStore.Set(sessionID, session)
	slog.Info("Session created", "session_id", sessionID)
	return session
}
