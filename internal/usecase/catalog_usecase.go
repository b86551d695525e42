package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

// CatalogReader defines the interface for reading persisted items.
type CatalogReader interface {
	ListItems(ctx context.Context, tagQuery string, limit, offset int) ([]*entity.Item, error)
	GetItem(ctx context.Context, id int64) (*entity.Item, error)
}

type catalogUseCase struct {
	items    repository.ItemRepository
	tags     repository.TagRepository
	guard    repository.BackfillGuard
	scraper  ScrapeOrchestrator
	guardTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogReader creates a new CatalogReader use case.
func NewCatalogReader(
	items repository.ItemRepository,
	tags repository.TagRepository,
	guard repository.BackfillGuard,
	scraper ScrapeOrchestrator,
	guardTTL time.Duration,
	logger *zap.Logger,
) CatalogReader {
	return &catalogUseCase{
		items:    items,
		tags:     tags,
		guard:    guard,
		scraper:  scraper,
		guardTTL: guardTTL,
		logger:   logger,
	}
}

// ListItems pages over all items, or over the items of the first tag matching tagQuery.
// A matching tag with nothing stored yet triggers one backfill scrape per guard window.
func (uc *catalogUseCase) ListItems(ctx context.Context, tagQuery string, limit, offset int) ([]*entity.Item, error) {
	tagQuery = strings.TrimSpace(tagQuery)
	if tagQuery == "" {
		return uc.items.List(ctx, limit, offset)
	}

	tag, err := uc.tags.FindFirstMatching(ctx, tagQuery)
	if errors.Is(err, repository.ErrNotFound) {
		return []*entity.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag %q: %w", tagQuery, err)
	}

	items, err := uc.items.ListByTag(ctx, tag.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || offset > 0 || tag.Count == 0 {
		return items, nil
	}

	if err := uc.backfill(ctx, tag); err != nil {
		return nil, err
	}
	return uc.items.ListByTag(ctx, tag.ID, limit, offset)
}

func (uc *catalogUseCase) backfill(ctx context.Context, tag *entity.Tag) error {
	key := fmt.Sprintf("%s:%s", tag.Kind, tag.Name)
	acquired, err := uc.guard.TryAcquire(ctx, key, uc.guardTTL)
	if err != nil {
		return fmt.Errorf("acquire backfill guard: %w", err)
	}
	if !acquired {
		metrics.BackfillsTotal.WithLabelValues("skipped").Inc()
		uc.logger.Debug("backfill already running", zap.String("tag", tag.Name))
		return nil
	}

	metrics.BackfillsTotal.WithLabelValues("started").Inc()
	uc.logger.Info("starting lazy backfill",
		zap.String("tag", tag.Name),
		zap.String("kind", string(tag.Kind)),
		zap.Int("count", tag.Count))

	req := entity.ScrapeRequest{
		TotalRequested: tag.Count,
		Filter:         entity.Filter{Kind: tag.Kind, Name: tag.Name},
	}
	result, err := uc.scraper.Scrape(ctx, req)
	if err == nil {
		return nil
	}

	metrics.BackfillsTotal.WithLabelValues("failed").Inc()
	if result != nil {
		// The inline page is stored; only some queued steps are missing.
		uc.logger.Warn("backfill partially enqueued",
			zap.String("tag", tag.Name),
			zap.Int("queued_steps", len(result.JobIDs)),
			zap.Error(err))
		return nil
	}
	if rerr := uc.guard.Release(ctx, key); rerr != nil {
		uc.logger.Warn("failed to release backfill guard", zap.String("tag", tag.Name), zap.Error(rerr))
	}
	return fmt.Errorf("backfill tag %q: %w", tag.Name, err)
}

// GetItem returns one item with its tag names.
func (uc *catalogUseCase) GetItem(ctx context.Context, id int64) (*entity.Item, error) {
	item, err := uc.items.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
