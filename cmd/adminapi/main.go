package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/api"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/config"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/monitoring"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/selectortest"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/store"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	siteStore, err := store.NewSiteStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer siteStore.Close()
	pageCache := store.NewPageCache(cfg.RedisAddr)

	// Initialize Monitoring
	metrics := monitoring.NewMetrics()

	// Initialize Selector Tester
	fetchTimeout := time.Duration(cfg.FetchTimeout) * time.Second
	var rendered selectortest.Fetcher
	if cfg.RenderedFetches {
		rendered = selectortest.NewRenderedFetcher(fetchTimeout)
	}
	tester := selectortest.NewTester(
		selectortest.NewHTTPFetcher(fetchTimeout),
		rendered,
		pageCache,
		time.Duration(cfg.PageCacheTTL)*time.Second,
		logger,
	)

	// Initialize API Server
	server := api.NewServer(cfg, siteStore, pageCache, tester, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
