package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", s.handleHealthCheck)

	r.Route("/api/admin/parser", func(r chi.Router) {
		r.Get("/sites", s.handleListSites)
		r.Post("/sites", s.handleCreateSite)
		r.Get("/sites/{id}", s.handleGetSite)
		r.Put("/sites/{id}", s.handleUpdateSite)
		r.Delete("/sites/{id}", s.handleDeleteSite)
		r.Post("/sites/{id}/toggle", s.handleToggleSite)
		r.Post("/test-selectors", s.handleTestSelectors)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	return r
}
