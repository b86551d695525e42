package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
)

// ItemRepoImpl provides a concrete implementation for the ItemRepository interface using PostgreSQL.
type ItemRepoImpl struct {
	db *pgxpool.Pool
}

// NewItemRepo creates a new instance of ItemRepoImpl.
func NewItemRepo(db *pgxpool.Pool) *ItemRepoImpl {
	return &ItemRepoImpl{db: db}
}

// UpsertByTitle stores or updates items keyed by title within a single transaction and
// attaches every known genre and keyword tag named by the record.
func (r *ItemRepoImpl) UpsertByTitle(ctx context.Context, records []entity.ItemRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		directorsJSON, err := json.Marshal(nonNil(rec.Directors))
		if err != nil {
			return err
		}
		castJSON, err := json.Marshal(nonNil(rec.Cast))
		if err != nil {
			return err
		}

		var itemID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO items (title, year, rating, summary, directors, cast_members)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (title) DO UPDATE SET
				year = EXCLUDED.year,
				rating = EXCLUDED.rating,
				summary = EXCLUDED.summary,
				directors = EXCLUDED.directors,
				cast_members = EXCLUDED.cast_members,
				updated_at = NOW()
			RETURNING id`,
			rec.Title, rec.Year, rec.Rating, rec.Summary, directorsJSON, castJSON,
		).Scan(&itemID)
		if err != nil {
			return fmt.Errorf("upsert item %q: %w", rec.Title, err)
		}

		if len(rec.Genres) == 0 && len(rec.Keywords) == 0 {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO item_tags (item_id, tag_id)
			SELECT $1::bigint, id FROM tags
			WHERE (kind = 'genre' AND name = ANY($2)) OR (kind = 'keyword' AND name = ANY($3))
			ON CONFLICT DO NOTHING`,
			itemID, nonNil(rec.Genres), nonNil(rec.Keywords),
		)
		if err != nil {
			return fmt.Errorf("link tags for %q: %w", rec.Title, err)
		}
	}

	return tx.Commit(ctx)
}

// List returns a page of items ordered by id.
func (r *ItemRepoImpl) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, year, rating, summary
		FROM items
		ORDER BY id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

// ListByTag returns a page of items attached to the tag, ordered by id.
func (r *ItemRepoImpl) ListByTag(ctx context.Context, tagID int64, limit, offset int) ([]*entity.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.title, i.year, i.rating, i.summary
		FROM items i
		JOIN item_tags it ON it.item_id = i.id
		WHERE it.tag_id = $1
		ORDER BY i.id
		LIMIT $2 OFFSET $3`,
		tagID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

// FindByID retrieves an item with its credits and tag names.
func (r *ItemRepoImpl) FindByID(ctx context.Context, id int64) (*entity.Item, error) {
	row := r.db.QueryRow(ctx, `
		SELECT i.id, i.title, i.year, i.rating, i.summary, i.directors, i.cast_members,
			COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}')
		FROM items i
		LEFT JOIN item_tags it ON it.item_id = i.id
		LEFT JOIN tags t ON t.id = it.tag_id
		WHERE i.id = $1
		GROUP BY i.id`,
		id,
	)

	var item entity.Item
	var directorsJSON, castJSON []byte
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Year,
		&item.Rating,
		&item.Summary,
		&directorsJSON,
		&castJSON,
		&item.Tags,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(directorsJSON, &item.Directors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(castJSON, &item.Cast); err != nil {
		return nil, err
	}
	return &item, nil
}

func scanSummaries(rows pgx.Rows) ([]*entity.Item, error) {
	defer rows.Close()

	items := []*entity.Item{}
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Year, &it.Rating, &it.Summary); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
