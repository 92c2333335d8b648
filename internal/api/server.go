package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/config"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/monitoring"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/selectortest"
)

// SiteStore is the persistence surface the handlers need.
type SiteStore interface {
	List(ctx context.Context) ([]*parser.SiteConfig, error)
	Get(ctx context.Context, id string) (*parser.SiteConfig, error)
	Create(ctx context.Context, site *parser.SiteConfig) (*parser.SiteConfig, error)
	Update(ctx context.Context, id string, site *parser.SiteConfig) (*parser.SiteConfig, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, site *parser.SiteConfig) (*parser.SiteConfig, error)
	Ping(ctx context.Context) error
}

// SelectorTester runs a selector set against a live URL.
type SelectorTester interface {
	Run(ctx context.Context, url, userAgent string, render bool, selectors parser.SelectorSet) (map[string]selectortest.FieldResult, error)
}

// Pinger is the health-check surface of the page cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the admin HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	store      SiteStore
	cache      Pinger
	tester     SelectorTester
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, st SiteStore, cache Pinger, tester SelectorTester, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		store:   st,
		cache:   cache,
		tester:  tester,
		metrics: m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
