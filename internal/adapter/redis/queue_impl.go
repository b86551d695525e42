package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
)

const (
	pendingQueueKey    = "scraper:batches:pending"
	processingQueueKey = "scraper:batches:processing"
)

// QueueRepoImpl provides a concrete implementation for the JobQueue interface using Redis Lists.
// Jobs are pushed on the left of the shared pending list and moved atomically into a
// processing list owned by one consumer, so a worker that dies mid-step leaves its job
// recoverable without touching jobs other workers hold.
type QueueRepoImpl struct {
	client     *redis.Client
	processing string
}

// NewQueueRepo creates a new instance of QueueRepoImpl. consumer names the processing
// list; it must be stable across restarts of the same worker and unique between workers.
func NewQueueRepo(client *redis.Client, consumer string) *QueueRepoImpl {
	return &QueueRepoImpl{client: client, processing: processingKey(consumer)}
}

func processingKey(consumer string) string {
	if consumer == "" {
		return processingQueueKey
	}
	return processingQueueKey + ":" + consumer
}

// Enqueue assigns the job an id when it has none and pushes it onto the pending list.
func (r *QueueRepoImpl) Enqueue(ctx context.Context, job entity.BatchJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	if err := r.client.LPush(ctx, pendingQueueKey, payload).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Dequeue blocks for up to wait until a job is available and moves it to this consumer's
// processing list. It returns repository.ErrQueueEmpty when the wait elapses.
func (r *QueueRepoImpl) Dequeue(ctx context.Context, wait time.Duration) (*entity.BatchJob, error) {
	raw, err := r.client.BLMove(ctx, pendingQueueKey, r.processing, "RIGHT", "LEFT", wait).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	var job entity.BatchJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// A payload nobody can decode would otherwise be requeued forever.
		decodeErr := fmt.Errorf("decode job: %w", err)
		if rerr := r.client.LRem(ctx, r.processing, 1, raw).Err(); rerr != nil {
			return nil, errors.Join(decodeErr, fmt.Errorf("drop undecodable job: %w", rerr))
		}
		return nil, decodeErr
	}
	job.Receipt = raw
	return &job, nil
}

// Ack removes a finished job from the processing list.
func (r *QueueRepoImpl) Ack(ctx context.Context, job *entity.BatchJob) error {
	return r.client.LRem(ctx, r.processing, 1, job.Receipt).Err()
}

// Requeue moves every job left in this consumer's processing list back onto the pending
// list. Workers call it once at startup, before their loops dequeue anything.
func (r *QueueRepoImpl) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := r.client.LMove(ctx, r.processing, pendingQueueKey, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}

// Size returns the current number of pending jobs.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, pendingQueueKey).Result()
}
