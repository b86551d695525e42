package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"github.com/user/catalog-scraper/internal/scraper"
)

type executeCall struct {
	target scraper.SessionTarget
	step   entity.BatchStep
}

type fakeExecutor struct {
	mu    sync.Mutex
	calls []executeCall
	err   error
}

func (f *fakeExecutor) Execute(_ context.Context, target scraper.SessionTarget, step entity.BatchStep) ([]entity.ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, executeCall{target: target, step: step})
	if f.err != nil {
		return nil, f.err
	}
	records := make([]entity.ItemRecord, step.ItemsToExtract)
	for i := range records {
		records[i] = entity.ItemRecord{Title: fmt.Sprintf("%s item %d", target.Filter.Name, i+1)}
	}
	return records, nil
}

type fakeItemRepo struct {
	mu        sync.Mutex
	upserted  []entity.ItemRecord
	upsertErr error
	all       []*entity.Item
	byTag     map[int64][]*entity.Item
	// afterUpsert fills byTag when a backfill stores something.
	afterUpsert func(r *fakeItemRepo)
}

func (f *fakeItemRepo) UpsertByTitle(_ context.Context, records []entity.ItemRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, records...)
	if f.afterUpsert != nil {
		f.afterUpsert(f)
	}
	return nil
}

func (f *fakeItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	return page(f.all, limit, offset), nil
}

func (f *fakeItemRepo) ListByTag(_ context.Context, tagID int64, limit, offset int) ([]*entity.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.byTag[tagID], limit, offset), nil
}

func (f *fakeItemRepo) FindByID(_ context.Context, id int64) (*entity.Item, error) {
	for _, it := range f.all {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, repository.ErrNotFound
}

func page(items []*entity.Item, limit, offset int) []*entity.Item {
	out := []*entity.Item{}
	for i := offset; i < len(items) && len(out) < limit; i++ {
		out = append(out, items[i])
	}
	return out
}

type fakeQueue struct {
	mu       sync.Mutex
	pending  []entity.BatchJob
	acked    []string
	failAt   int // 1-based Enqueue call that fails; 0 never fails
	enqueued int
}

func (f *fakeQueue) Enqueue(_ context.Context, job entity.BatchJob) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued++
	if f.failAt > 0 && f.enqueued == f.failAt {
		return "", errors.New("redis unavailable")
	}
	job.ID = fmt.Sprintf("job-%d", f.enqueued)
	f.pending = append(f.pending, job)
	return job.ID, nil
}

func (f *fakeQueue) Dequeue(_ context.Context, _ time.Duration) (*entity.BatchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil, repository.ErrQueueEmpty
	}
	job := f.pending[0]
	f.pending = f.pending[1:]
	return &job, nil
}

func (f *fakeQueue) Ack(_ context.Context, job *entity.BatchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, job.ID)
	return nil
}

func (f *fakeQueue) Requeue(context.Context) (int, error) { return 0, nil }

func (f *fakeQueue) Size(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.pending)), nil
}

type fakeTagRepo struct {
	tags      []*entity.Tag
	upserted  []entity.TaxonomyTag
	upsertErr error
}

func (f *fakeTagRepo) UpsertByName(_ context.Context, name string, count int, kind entity.TagKind) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, entity.TaxonomyTag{Name: name, Count: count, Kind: kind})
	return nil
}

func (f *fakeTagRepo) FindFirstMatching(_ context.Context, query string) (*entity.Tag, error) {
	for _, t := range f.tags {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(query)) {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func (f *fakeGuard) TryAcquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeGuard) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
	f.released = append(f.released, key)
	return nil
}

type fakeOrchestrator struct {
	requests []entity.ScrapeRequest
	result   *ScrapeResult
	err      error
	onScrape func()
}

func (f *fakeOrchestrator) Scrape(_ context.Context, req entity.ScrapeRequest) (*ScrapeResult, error) {
	f.requests = append(f.requests, req)
	if f.onScrape != nil {
		f.onScrape()
	}
	return f.result, f.err
}

type fakeTagSource struct {
	tags []entity.TaxonomyTag
	err  error
}

func (f *fakeTagSource) Scrape(context.Context) ([]entity.TaxonomyTag, error) {
	return f.tags, f.err
}
