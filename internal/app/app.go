// Package app builds the collaborators shared by the api, worker and tagloader binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-scraper/internal/adapter/chromedp_browser"
	"github.com/user/catalog-scraper/internal/adapter/document"
	"github.com/user/catalog-scraper/internal/adapter/postgres"
	"github.com/user/catalog-scraper/internal/adapter/proxy"
	"github.com/user/catalog-scraper/internal/scraper"
	"github.com/user/catalog-scraper/internal/usecase"
	"github.com/user/catalog-scraper/pkg/config"
	"go.uber.org/zap"
)

// Scraping holds the browser and document stack.
type Scraping struct {
	Sessions *chromedp_browser.SessionFactory
	Fetcher  *document.Fetcher
	Executor *scraper.SessionExecutor
	Tags     *scraper.TagScraper
}

// NewScraping wires sessions, the document fetcher, the record parser and both scrapers.
func NewScraping(cfg *config.Config, logger *zap.Logger) (*Scraping, error) {
	rotation, err := proxy.NewManager(cfg.ProxyURLs, cfg.UserAgents)
	if err != nil {
		return nil, err
	}

	sessions := chromedp_browser.NewSessionFactory(chromedp_browser.Options{
		Headless:           cfg.Headless,
		UserAgent:          cfg.UserAgent,
		PageLoadTimeout:    cfg.PageLoadTimeout,
		InteractionTimeout: cfg.InteractionTimeout,
		Rotation:           rotation,
	}, logger.Named("browser"))

	fetcher, err := document.NewFetcher(document.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		CacheSize: cfg.DetailCacheSize,
		Rotation:  rotation,
	}, logger.Named("fetcher"))
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("create document fetcher: %w", err)
	}

	selectors := scraper.DefaultSelectors()
	parser, err := scraper.NewRecordParser(fetcher, cfg.BaseURL, selectors)
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("create record parser: %w", err)
	}

	execCfg := scraper.ExecutorConfig{
		BaseURL:          cfg.BaseURL,
		ListingPath:      cfg.ListingPath,
		ParseConcurrency: cfg.ParseConcurrency,
		Selectors:        selectors,
	}
	return &Scraping{
		Sessions: sessions,
		Fetcher:  fetcher,
		Executor: scraper.NewSessionExecutor(sessions, parser, execCfg, logger.Named("executor")),
		Tags:     scraper.NewTagScraper(fetcher, sessions, execCfg, cfg.SessionCapacity, logger.Named("tags")),
	}, nil
}

// Close shuts the shared browser allocator down.
func (s *Scraping) Close() {
	s.Sessions.Close()
}

// ScrapeConfig maps the sizing keys onto the orchestrator's settings.
func ScrapeConfig(cfg *config.Config) usecase.ScrapeConfig {
	return usecase.ScrapeConfig{
		SessionCapacity:           cfg.SessionCapacity,
		FirstLoadSize:             cfg.FirstLoadSize,
		MaxInteractionsPerSession: cfg.MaxInteractionsPerSession,
	}
}

// NewPostgres opens the pool and applies the schema.
func NewPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	if err := postgres.Migrate(ctx, dbpool); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

// NewRedis connects and pings the Redis client.
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}
	return rdb, nil
}
