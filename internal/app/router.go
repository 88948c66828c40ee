package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/auth"
)

// Router wires the panel API. Everything under /api requires a bearer token;
// the admin subtree additionally requires the administrator gate.
func Router(h *Handlers, log *zap.Logger, healthz http.HandlerFunc, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", healthz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware(h.Cfg.JWTSecret))

		api.Get("/session", h.getSession)
		api.Post("/session/refresh", h.refreshSession)

		api.Get("/day", h.getDay)
		api.Post("/groups/{id}/attendance", h.postAttendance)
		api.Get("/groups/{id}/duplicate", h.getDuplicate)
		api.Post("/records", h.postManual)

		api.Route("/admin", func(ad chi.Router) {
			ad.Use(h.requireAdmin)

			ad.Get("/calendario", h.adminCalendario)
			ad.Put("/calendario", h.adminReplaceCalendario)

			ad.Post("/import", h.adminImport)
			ad.Get("/export", h.adminExport)
			ad.Get("/export.xlsx", h.adminExportXLSX)
			ad.Post("/save", h.adminSave)
			ad.Post("/backup", h.adminBackup)

			ad.Get("/{collection}", h.adminList)
			ad.Post("/{collection}", h.adminAdd)
			ad.Put("/{collection}/{id}", h.adminUpdate)
			ad.Delete("/{collection}/{id}", h.adminDelete)
		})
	})

	return r
}
