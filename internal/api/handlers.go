package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/store"
)

// envelope is the response shape every admin endpoint uses. The panel only
// inspects success/error/details; data carries the payload on success.
type envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// testSelectorsRequest is the body of POST /api/admin/parser/test-selectors.
type testSelectorsRequest struct {
	URL       string             `json:"url"`
	UserAgent string             `json:"userAgent,omitempty"`
	Render    bool               `json:"render,omitempty"`
	Selectors parser.SelectorSet `json:"selectors"`
}

// importRequest is the body of POST /api/admin/parser/import.
type importRequest struct {
	Config json.RawMessage `json:"config"`
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.store.List(r.Context())
	if err != nil {
		s.respondStoreError(w, err, "failed to list sites")
		return
	}
	s.respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: sites})
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err, "failed to load site")
		return
	}
	s.respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: site})
}

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	site, ok := s.decodeSite(w, r)
	if !ok {
		return
	}
	created, err := s.store.Create(r.Context(), site)
	if err != nil {
		s.respondStoreError(w, err, "failed to create site")
		return
	}
	s.metrics.IncSiteMutations("create")
	s.logger.Info("parser site created", zap.String("id", created.ID), zap.String("name", created.Name))
	s.respondWithJSON(w, http.StatusCreated, envelope{Success: true, Data: created})
}

func (s *Server) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	site, ok := s.decodeSite(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := s.store.Update(r.Context(), id, site)
	if err != nil {
		s.respondStoreError(w, err, "failed to update site")
		return
	}
	s.metrics.IncSiteMutations("update")
	s.logger.Info("parser site updated", zap.String("id", id), zap.String("name", updated.Name))
	s.respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: updated})
}

func (s *Server) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.respondStoreError(w, err, "failed to delete site")
		return
	}
	s.metrics.IncSiteMutations("delete")
	s.logger.Info("parser site deleted", zap.String("id", id))
	s.respondWithJSON(w, http.StatusOK, envelope{Success: true})
}

func (s *Server) handleToggleSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	enabled, err := s.store.Toggle(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "failed to toggle site")
		return
	}
	s.metrics.IncSiteMutations("toggle")
	message := "Site disabled"
	if enabled {
		message = "Site enabled"
	}
	s.respondWithJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

func (s *Server) handleTestSelectors(w http.ResponseWriter, r *http.Request) {
	var req testSelectorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		s.respondWithError(w, http.StatusBadRequest, "Test URL is required")
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid test URL")
		return
	}

	results, err := s.tester.Run(r.Context(), req.URL, req.UserAgent, req.Render, req.Selectors)
	if err != nil {
		s.logger.Warn("selector test failed", zap.String("url", req.URL), zap.Error(err))
		s.metrics.IncSelectorTests("fetch_failed")
		s.respondWithError(w, http.StatusBadGateway, "Failed to fetch test URL")
		return
	}
	s.metrics.IncSelectorTests("ok")
	s.respondWithJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    map[string]interface{}{"results": results},
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sites, err := s.store.List(r.Context())
	if err != nil {
		s.respondStoreError(w, err, "failed to export sites")
		return
	}
	doc := parser.Export{ExportedAt: time.Now().UTC(), Sites: sites}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="parser-sites.json"`)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.logger.Error("failed to write export", zap.Error(err))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Config) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sites, err := parser.ParseImport(req.Config)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Unrecognized config format")
		return
	}

	for _, site := range sites {
		if err := site.Validate(); err != nil {
			s.respondValidationError(w, err)
			return
		}
	}
	imported := 0
	for _, site := range sites {
		if _, err := s.store.Upsert(r.Context(), site); err != nil {
			s.respondStoreError(w, err, "failed to import site")
			return
		}
		imported++
	}
	s.metrics.IncSiteMutations("import")
	s.logger.Info("parser sites imported", zap.Int("count", imported))
	s.respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]int{"imported": imported}})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.store.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.cache.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	isHealthy := healthStatus["postgres"] == "healthy" && healthStatus["redis"] == "healthy"
	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

// decodeSite reads and validates a site config body, writing the error
// response itself when the body is unusable.
func (s *Server) decodeSite(w http.ResponseWriter, r *http.Request) (*parser.SiteConfig, bool) {
	var site parser.SiteConfig
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if site.Selectors.Fields == nil {
		site.Selectors.Fields = map[string]parser.FieldSelector{}
	}
	if err := site.Validate(); err != nil {
		s.respondValidationError(w, err)
		return nil, false
	}
	return &site, true
}

func (s *Server) respondValidationError(w http.ResponseWriter, err error) {
	s.metrics.IncErrorsTotal("validation")
	var verr *parser.ValidationError
	if errors.As(err, &verr) {
		s.respondWithJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Error:   verr.Message,
			Details: verr.Details,
		})
		return
	}
	s.respondWithError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, store.ErrSiteNotFound):
		s.respondWithError(w, http.StatusNotFound, "Parser site not found")
	case errors.Is(err, store.ErrDuplicateName):
		s.respondWithError(w, http.StatusConflict, "A site with this name already exists")
	default:
		s.logger.Error(logMsg, zap.Error(err))
		s.metrics.IncErrorsTotal("db")
		s.respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, envelope{Success: false, Error: message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
