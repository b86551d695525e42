package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"github.com/user/catalog-scraper/internal/scraper"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// StepExecutor runs one BatchStep inside a fresh browser session.
type StepExecutor interface {
	Execute(ctx context.Context, target scraper.SessionTarget, step entity.BatchStep) ([]entity.ItemRecord, error)
}

// ScrapeConfig holds the sizing knobs of the orchestrator.
type ScrapeConfig struct {
	SessionCapacity           int
	FirstLoadSize             int
	MaxInteractionsPerSession int
}

// ScrapeResult is what a caller gets back without waiting for queued steps.
type ScrapeResult struct {
	Items  []entity.ItemRecord
	JobIDs []string
	Plan   entity.BatchPlan
}

// ScrapeOrchestrator defines the interface for turning a request into extracted items and queued jobs.
type ScrapeOrchestrator interface {
	Scrape(ctx context.Context, req entity.ScrapeRequest) (*ScrapeResult, error)
}

type scrapeUseCase struct {
	executor StepExecutor
	items    repository.ItemRepository
	queue    repository.JobQueue
	cfg      ScrapeConfig
	logger   *zap.Logger
}

// NewScrapeOrchestrator creates a new instance of the scrape use case.
func NewScrapeOrchestrator(
	executor StepExecutor,
	items repository.ItemRepository,
	queue repository.JobQueue,
	cfg ScrapeConfig,
	logger *zap.Logger,
) ScrapeOrchestrator {
	return &scrapeUseCase{
		executor: executor,
		items:    items,
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
	}
}

// Scrape extracts the first page inline, persists it, and enqueues the remaining steps.
// When an enqueue fails, jobs already enqueued stay queued and the partial result is
// returned together with the error.
func (uc *scrapeUseCase) Scrape(ctx context.Context, req entity.ScrapeRequest) (*ScrapeResult, error) {
	if req.Filter.IsZero() {
		return nil, scraper.ValidationError{Reason: "either a genre or a keyword is required"}
	}
	if req.TotalRequested < 0 {
		return nil, scraper.ValidationError{Reason: "total requested cannot be negative"}
	}

	capacity := req.SessionCapacity
	if capacity <= 0 {
		capacity = uc.cfg.SessionCapacity
	}
	planner := scraper.NewPlanner(capacity, uc.cfg.MaxInteractionsPerSession)

	result := &ScrapeResult{Items: []entity.ItemRecord{}, JobIDs: []string{}}

	firstCount := min(req.TotalRequested, uc.cfg.FirstLoadSize)
	if firstCount > 0 {
		items, err := uc.runInline(ctx, req.Filter, firstCount)
		if err != nil {
			return nil, err
		}
		result.Items = items
	}

	remainder := min(capacity, req.TotalRequested) - uc.cfg.FirstLoadSize
	plan, err := planner.Plan(remainder, req.TotalRequested)
	if err != nil {
		return nil, err
	}
	result.Plan = plan

	for i, step := range plan {
		job := entity.BatchJob{
			Filter:         req.Filter,
			TotalRequested: req.TotalRequested,
			PageSize:       capacity,
			Step:           step,
		}
		id, err := uc.queue.Enqueue(ctx, job)
		if err != nil {
			return result, fmt.Errorf("enqueue step %d of %d: %w", i+1, len(plan), err)
		}
		metrics.JobsEnqueuedTotal.WithLabelValues(string(req.Filter.Kind)).Inc()
		result.JobIDs = append(result.JobIDs, id)
	}

	if len(plan) > 0 {
		if size, err := uc.queue.Size(ctx); err == nil {
			metrics.JobsInQueue.Set(float64(size))
		}
	}

	uc.logger.Info("scrape request accepted",
		zap.String("kind", string(req.Filter.Kind)),
		zap.String("name", req.Filter.Name),
		zap.Int("total_requested", req.TotalRequested),
		zap.Int("inline_items", len(result.Items)),
		zap.Int("queued_steps", len(result.JobIDs)))
	return result, nil
}

func (uc *scrapeUseCase) runInline(ctx context.Context, filter entity.Filter, count int) ([]entity.ItemRecord, error) {
	startTime := time.Now()
	target := scraper.SessionTarget{Filter: filter, PageSize: count}
	records, err := uc.executor.Execute(ctx, target, entity.BatchStep{CumulativeInteractions: 0, ItemsToExtract: count})
	metrics.BatchStepDuration.WithLabelValues("inline").Observe(time.Since(startTime).Seconds())
	if err != nil {
		metrics.BatchStepsTotal.WithLabelValues("inline", "failure", scraper.ErrorType(err)).Inc()
		return nil, fmt.Errorf("inline step: %w", err)
	}

	if err := uc.items.UpsertByTitle(ctx, records); err != nil {
		metrics.BatchStepsTotal.WithLabelValues("inline", "failure", "storage").Inc()
		return nil, fmt.Errorf("save inline items: %w", err)
	}
	metrics.BatchStepsTotal.WithLabelValues("inline", "success", "").Inc()
	metrics.ItemsExtractedTotal.WithLabelValues(string(filter.Kind)).Add(float64(len(records)))
	return records, nil
}
