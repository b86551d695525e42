package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/catalog-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-scraper/internal/adapter/redis"
	"github.com/user/catalog-scraper/internal/app"
	"github.com/user/catalog-scraper/internal/usecase"
	"github.com/user/catalog-scraper/pkg/config"
	"github.com/user/catalog-scraper/pkg/logger"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// errorBackoff keeps a loop from spinning when Redis is down.
const errorBackoff = 2 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := app.NewPostgres(ctx, cfg)
	if err != nil {
		log.Fatal("postgres unavailable", zap.Error(err))
	}
	defer dbpool.Close()

	rdb, err := app.NewRedis(ctx, cfg)
	if err != nil {
		log.Fatal("redis unavailable", zap.Error(err))
	}
	defer rdb.Close()

	scraping, err := app.NewScraping(cfg, log)
	if err != nil {
		log.Fatal("could not build scraping stack", zap.Error(err))
	}
	defer scraping.Close()

	workerID, err := cfg.WorkerIdentity()
	if err != nil {
		log.Fatal("could not name worker", zap.Error(err))
	}
	log = log.With(zap.String("worker_id", workerID))

	queueRepo := redis_adapter.NewQueueRepo(rdb, workerID)
	itemRepo := postgres.NewItemRepo(dbpool)

	// Jobs this worker left in flight in a previous run go back to the pending list.
	requeued, err := queueRepo.Requeue(ctx)
	if err != nil {
		log.Fatal("could not requeue stranded jobs", zap.Error(err))
	}
	if requeued > 0 {
		log.Info("requeued stranded jobs", zap.Int("count", requeued))
	}

	worker := usecase.NewBatchWorker(queueRepo, scraping.Executor, itemRepo, cfg.QueuePollTimeout, log.Named("worker"))

	metricsServer := &http.Server{Addr: ":" + cfg.ServerPort, Handler: promhttp.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerConcurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runLoop(ctx, worker, log.With(zap.Int("loop", id)))
		}(i + 1)
	}
	log.Info("worker started", zap.Int("concurrency", cfg.WorkerConcurrency))

	<-ctx.Done()
	log.Info("shutting down worker...")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server forced to shutdown", zap.Error(err))
	}
	log.Info("worker exiting")
}

func runLoop(ctx context.Context, worker usecase.BatchWorker, log *zap.Logger) {
	for ctx.Err() == nil {
		err := worker.ProcessJobFromQueue(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		log.Error("failed to process job", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(errorBackoff):
		}
	}
}
