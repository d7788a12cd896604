package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route of the studio interface.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.HandleCatalog)
		r.Post("/upload", h.HandleUpload)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.HandleSessions)
			r.Post("/", h.HandleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.HandleSessionDetail)
				r.Delete("/", h.HandleDeleteSession)
				r.Post("/upload", h.HandleSessionUpload)
				r.Put("/model", h.HandleSelectModel)
				r.Put("/scene", h.HandleSetScene)
				r.Patch("/lighting", h.HandleAdjustLighting)
				r.Post("/lighting/{op}", h.HandleLightingHistory)
				r.Post("/generate", h.HandleGenerate)
				r.Get("/result", h.HandleResult)
				r.Get("/export/{preset}", h.HandleExport)
			})
		})
	})

	r.Get(uploadsURL+"/*", h.HandleUploads)
	r.Get("/*", h.HandleStatic)

	return r
}
