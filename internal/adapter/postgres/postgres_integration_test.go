//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
)

// setupPostgres starts a Postgres container, applies the schema and returns a pool
func setupPostgres(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "scraper",
			"POSTGRES_PASSWORD": "scraper",
			"POSTGRES_DB":       "catalog",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}

	endpoint, err := pgContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Postgres endpoint: %v", err)
	}

	dsn := fmt.Sprintf("postgres://scraper:scraper@%s/catalog?sslmode=disable", endpoint)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	cleanup := func() {
		pool.Close()
		pgContainer.Terminate(ctx)
	}
	return pool, cleanup
}

func TestTagRepo_Integration_UpsertAndMatch(t *testing.T) {
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	tags := NewTagRepo(pool)

	if err := tags.UpsertByName(ctx, "Comedy", 100, entity.KindGenre); err != nil {
		t.Fatalf("UpsertByName() error = %v", err)
	}
	if err := tags.UpsertByName(ctx, "Comedy", 120, entity.KindGenre); err != nil {
		t.Fatalf("UpsertByName() second call error = %v", err)
	}
	if err := tags.UpsertByName(ctx, "dark-comedy", 7, entity.KindKeyword); err != nil {
		t.Fatalf("UpsertByName() keyword error = %v", err)
	}

	tag, err := tags.FindFirstMatching(ctx, "comed")
	if err != nil {
		t.Fatalf("FindFirstMatching() error = %v", err)
	}
	if tag.Name != "Comedy" || tag.Count != 120 || tag.Kind != entity.KindGenre {
		t.Errorf("FindFirstMatching() = %+v, want Comedy/120/genre", tag)
	}

	if _, err := tags.FindFirstMatching(ctx, "western"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindFirstMatching() miss error = %v, want ErrNotFound", err)
	}
	if _, err := tags.FindFirstMatching(ctx, "%"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindFirstMatching(%%) error = %v, want ErrNotFound", err)
	}
	if err := tags.UpsertByName(ctx, "Drama", -1, entity.KindGenre); err == nil {
		t.Error("UpsertByName() with negative count succeeded")
	}
}

func TestItemRepo_Integration_UpsertByTitle(t *testing.T) {
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	tags := NewTagRepo(pool)
	items := NewItemRepo(pool)

	for _, name := range []string{"Comedy", "Drama"} {
		if err := tags.UpsertByName(ctx, name, 10, entity.KindGenre); err != nil {
			t.Fatalf("UpsertByName() error = %v", err)
		}
	}
	if err := tags.UpsertByName(ctx, "heist", 3, entity.KindKeyword); err != nil {
		t.Fatalf("UpsertByName() error = %v", err)
	}

	first := entity.ItemRecord{
		Title:     "The Caper",
		Year:      2001,
		Rating:    7.1,
		Summary:   "A crew plans one last job.",
		Directors: []string{"A. Director"},
		Cast:      []string{"Lead One", "Lead Two"},
		Genres:    []string{"Comedy", "Unknown"},
		Keywords:  []string{"heist"},
	}
	if err := items.UpsertByTitle(ctx, []entity.ItemRecord{first}); err != nil {
		t.Fatalf("UpsertByTitle() error = %v", err)
	}

	updated := first
	updated.Rating = 7.4
	updated.Genres = []string{"Drama"}
	updated.Keywords = nil
	if err := items.UpsertByTitle(ctx, []entity.ItemRecord{updated}); err != nil {
		t.Fatalf("UpsertByTitle() update error = %v", err)
	}

	list, err := items.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d items, want 1", len(list))
	}

	got, err := items.FindByID(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Rating != 7.4 {
		t.Errorf("Rating = %v, want 7.4", got.Rating)
	}
	if len(got.Cast) != 2 || len(got.Directors) != 1 {
		t.Errorf("credits = %v / %v", got.Directors, got.Cast)
	}
	wantTags := []string{"Comedy", "Drama", "heist"}
	if fmt.Sprint(got.Tags) != fmt.Sprint(wantTags) {
		t.Errorf("Tags = %v, want %v", got.Tags, wantTags)
	}

	drama, err := tags.FindFirstMatching(ctx, "Drama")
	if err != nil {
		t.Fatalf("FindFirstMatching() error = %v", err)
	}
	byTag, err := items.ListByTag(ctx, drama.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByTag() error = %v", err)
	}
	if len(byTag) != 1 || byTag[0].Title != "The Caper" {
		t.Errorf("ListByTag() = %v", byTag)
	}

	if _, err := items.FindByID(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindByID() miss error = %v, want ErrNotFound", err)
	}
}
