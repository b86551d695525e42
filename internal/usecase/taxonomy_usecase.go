package usecase

import (
	"context"
	"fmt"

	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// TagSource scrapes the catalog's genre and keyword taxonomy.
type TagSource interface {
	Scrape(ctx context.Context) ([]entity.TaxonomyTag, error)
}

// TaxonomyLoader defines the interface for refreshing stored tags.
type TaxonomyLoader interface {
	Refresh(ctx context.Context) (int, error)
}

type taxonomyUseCase struct {
	source TagSource
	tags   repository.TagRepository
	logger *zap.Logger
}

// NewTaxonomyLoader creates a new instance of the taxonomy use case.
func NewTaxonomyLoader(source TagSource, tags repository.TagRepository, logger *zap.Logger) TaxonomyLoader {
	return &taxonomyUseCase{source: source, tags: tags, logger: logger}
}

// Refresh scrapes every tag and upserts it by name. It returns how many tags were written
// before any failure.
func (uc *taxonomyUseCase) Refresh(ctx context.Context) (int, error) {
	scraped, err := uc.source.Scrape(ctx)
	if err != nil {
		return 0, fmt.Errorf("scrape taxonomy: %w", err)
	}

	written := 0
	for _, tag := range scraped {
		if err := uc.tags.UpsertByName(ctx, tag.Name, tag.Count, tag.Kind); err != nil {
			return written, fmt.Errorf("upsert tag %q: %w", tag.Name, err)
		}
		metrics.TagsScrapedTotal.WithLabelValues(string(tag.Kind)).Inc()
		written++
	}

	uc.logger.Info("taxonomy refreshed", zap.Int("tags", written))
	return written, nil
}
