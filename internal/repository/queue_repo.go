package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/catalog-scraper/internal/entity"
)

// ErrQueueEmpty is returned by Dequeue when no job arrived within the wait.
var ErrQueueEmpty = errors.New("queue is empty")

// JobQueue is an at-least-once queue of batch jobs with no ordering guarantee.
type JobQueue interface {
	// Enqueue submits a job and returns its id.
	Enqueue(ctx context.Context, job entity.BatchJob) (string, error)
	// Dequeue blocks up to wait for a job. The job stays in flight until Ack is called.
	Dequeue(ctx context.Context, wait time.Duration) (*entity.BatchJob, error)
	// Ack removes a finished job from the in-flight list.
	Ack(ctx context.Context, job *entity.BatchJob) error
	// Requeue moves every in-flight job back to the pending queue.
	Requeue(ctx context.Context) (int, error)
	// Size returns the number of pending jobs.
	Size(ctx context.Context) (int64, error)
}
