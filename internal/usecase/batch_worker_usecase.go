package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"github.com/user/catalog-scraper/internal/scraper"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// BatchWorker defines the interface for consuming queued batch steps.
type BatchWorker interface {
	ProcessJobFromQueue(ctx context.Context) error
}

type batchWorkerUseCase struct {
	queue       repository.JobQueue
	executor    StepExecutor
	items       repository.ItemRepository
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewBatchWorker creates a new instance of the batch worker use case.
func NewBatchWorker(
	queue repository.JobQueue,
	executor StepExecutor,
	items repository.ItemRepository,
	pollTimeout time.Duration,
	logger *zap.Logger,
) BatchWorker {
	return &batchWorkerUseCase{
		queue:       queue,
		executor:    executor,
		items:       items,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// ProcessJobFromQueue takes a single job from the queue and runs it.
// An empty queue is a normal state and returns nil. A failed step is logged and
// acknowledged; there is no retry here.
func (uc *batchWorkerUseCase) ProcessJobFromQueue(ctx context.Context) error {
	job, err := uc.queue.Dequeue(ctx, uc.pollTimeout)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return nil
		}
		return fmt.Errorf("failed to dequeue batch job: %w", err)
	}
	if size, err := uc.queue.Size(ctx); err == nil {
		metrics.JobsInQueue.Set(float64(size))
	}

	log := uc.logger.With(
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Filter.Kind)),
		zap.String("name", job.Filter.Name),
		zap.Int("interactions", job.Step.CumulativeInteractions),
		zap.Int("items", job.Step.ItemsToExtract))
	log.Info("processing batch job")

	startTime := time.Now()
	target := scraper.SessionTarget{Filter: job.Filter, PageSize: job.PageSize}
	records, execErr := uc.executor.Execute(ctx, target, job.Step)
	metrics.BatchStepDuration.WithLabelValues("queued").Observe(time.Since(startTime).Seconds())

	// Leave the job in flight on shutdown so the next worker start requeues it.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if execErr != nil {
		metrics.BatchStepsTotal.WithLabelValues("queued", "failure", scraper.ErrorType(execErr)).Inc()
		log.Error("batch step failed", zap.Error(execErr))
		return uc.ack(ctx, job, log)
	}

	if err := uc.items.UpsertByTitle(ctx, records); err != nil {
		metrics.BatchStepsTotal.WithLabelValues("queued", "failure", "storage").Inc()
		log.Error("failed to save batch items", zap.Error(err))
		return uc.ack(ctx, job, log)
	}

	metrics.BatchStepsTotal.WithLabelValues("queued", "success", "").Inc()
	metrics.ItemsExtractedTotal.WithLabelValues(string(job.Filter.Kind)).Add(float64(len(records)))
	log.Info("batch job completed",
		zap.Int("extracted", len(records)),
		zap.Duration("duration", time.Since(startTime)))
	return uc.ack(ctx, job, log)
}

func (uc *batchWorkerUseCase) ack(ctx context.Context, job *entity.BatchJob, log *zap.Logger) error {
	if err := uc.queue.Ack(ctx, job); err != nil {
		log.Warn("failed to acknowledge batch job", zap.Error(err))
		return fmt.Errorf("failed to ack job %s: %w", job.ID, err)
	}
	return nil
}
