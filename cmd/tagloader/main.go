package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/catalog-scraper/internal/adapter/postgres"
	"github.com/user/catalog-scraper/internal/app"
	"github.com/user/catalog-scraper/internal/usecase"
	"github.com/user/catalog-scraper/pkg/config"
	"github.com/user/catalog-scraper/pkg/logger"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("could not load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("could not build logger", zap.Error(err))
	}
	defer log.Sync()

	metrics.Init()

	if err := run(cfg, log); err != nil {
		log.Error("taxonomy refresh failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := app.NewPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	scraping, err := app.NewScraping(cfg, log)
	if err != nil {
		return err
	}
	defer scraping.Close()

	loader := usecase.NewTaxonomyLoader(scraping.Tags, postgres.NewTagRepo(dbpool), log.Named("taxonomy"))
	written, err := loader.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh stopped after %d tags: %w", written, err)
	}
	log.Info("taxonomy refresh complete", zap.Int("written", written))
	return nil
}
