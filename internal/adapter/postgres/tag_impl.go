package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
)

// TagRepoImpl provides a concrete implementation for the TagRepository interface using PostgreSQL.
type TagRepoImpl struct {
	db *pgxpool.Pool
}

// NewTagRepo creates a new instance of TagRepoImpl.
func NewTagRepo(db *pgxpool.Pool) *TagRepoImpl {
	return &TagRepoImpl{db: db}
}

// UpsertByName creates or updates the tag identified by (name, kind). Last write wins.
func (r *TagRepoImpl) UpsertByName(ctx context.Context, name string, count int, kind entity.TagKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown tag kind %q", kind)
	}
	if count < 0 {
		return fmt.Errorf("tag %q count cannot be negative", name)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO tags (name, kind, item_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, kind) DO UPDATE SET
			item_count = EXCLUDED.item_count,
			updated_at = NOW()`,
		name, string(kind), count,
	)
	return err
}

// FindFirstMatching returns the oldest tag whose name contains query, ignoring case.
func (r *TagRepoImpl) FindFirstMatching(ctx context.Context, query string) (*entity.Tag, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, item_count, kind, created_at, updated_at
		FROM tags
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT 1`,
		escapeLike(query),
	)

	var tag entity.Tag
	var kind string
	err := row.Scan(&tag.ID, &tag.Name, &tag.Count, &kind, &tag.CreatedAt, &tag.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tag.Kind = entity.TagKind(kind)
	return &tag, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
