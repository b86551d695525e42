package repository

import (
	"context"
	"errors"

	"github.com/user/catalog-scraper/internal/entity"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ItemRepository defines the interface for storing and reading catalog items.
type ItemRepository interface {
	// UpsertByTitle creates or updates items keyed by title. Last write wins.
	UpsertByTitle(ctx context.Context, records []entity.ItemRecord) error
	// List returns a page of items ordered by id.
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
	// ListByTag returns a page of items attached to the tag.
	ListByTag(ctx context.Context, tagID int64, limit, offset int) ([]*entity.Item, error)
	// FindByID retrieves a single item with its tag names.
	FindByID(ctx context.Context, id int64) (*entity.Item, error)
}
