package repository

import (
	"context"

	"github.com/user/catalog-scraper/internal/entity"
)

// TagRepository defines the interface for storing taxonomy tags.
type TagRepository interface {
	// UpsertByName creates or updates the tag identified by (name, kind).
	UpsertByName(ctx context.Context, name string, count int, kind entity.TagKind) error
	// FindFirstMatching returns the first tag whose name contains query, case-insensitively.
	FindFirstMatching(ctx context.Context, query string) (*entity.Tag, error)
}
