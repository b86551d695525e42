package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/catalog-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-scraper/internal/adapter/redis"
	"github.com/user/catalog-scraper/internal/app"
	"github.com/user/catalog-scraper/internal/delivery/http/handler"
	"github.com/user/catalog-scraper/internal/delivery/http/router"
	"github.com/user/catalog-scraper/internal/usecase"
	"github.com/user/catalog-scraper/pkg/config"
	"github.com/user/catalog-scraper/pkg/logger"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; fall back to a bare production one.
		zap.Must(zap.NewProduction()).Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("could not build logger", zap.Error(err))
	}
	defer log.Sync()

	// --- Metrics ---
	metrics.Init()

	// --- Database Connections ---
	ctx := context.Background()

	dbpool, err := app.NewPostgres(ctx, cfg)
	if err != nil {
		log.Fatal("postgres unavailable", zap.Error(err))
	}
	defer dbpool.Close()
	log.Info("PostgreSQL connection pool established")

	rdb, err := app.NewRedis(ctx, cfg)
	if err != nil {
		log.Fatal("redis unavailable", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connection established")

	// --- Scraping stack (used by lazy backfills) ---
	scraping, err := app.NewScraping(cfg, log)
	if err != nil {
		log.Fatal("could not build scraping stack", zap.Error(err))
	}
	defer scraping.Close()

	// --- Repositories ---
	itemRepo := postgres.NewItemRepo(dbpool)
	tagRepo := postgres.NewTagRepo(dbpool)
	queueRepo := redis_adapter.NewQueueRepo(rdb, "api")
	guard := redis_adapter.NewBackfillGuard(rdb)

	// --- Use Cases ---
	orchestrator := usecase.NewScrapeOrchestrator(scraping.Executor, itemRepo, queueRepo, app.ScrapeConfig(cfg), log.Named("scrape"))
	catalog := usecase.NewCatalogReader(itemRepo, tagRepo, guard, orchestrator, cfg.BackfillGuardTTL, log.Named("catalog"))

	// --- HTTP Server ---
	checks := map[string]handler.HealthCheck{
		"postgres": dbpool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	apiHandler := handler.NewHandler(catalog, checks, log.Named("http"))
	requestTimeout := cfg.PageLoadTimeout + 2*time.Minute
	httpRouter := router.New(apiHandler, log, requestTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
