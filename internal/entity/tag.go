package entity

import "time"

// TagKind distinguishes the two taxonomies the catalog exposes.
type TagKind string

const (
	KindGenre   TagKind = "genre"
	KindKeyword TagKind = "keyword"
)

// Valid reports whether k is one of the known tag kinds.
func (k TagKind) Valid() bool {
	return k == KindGenre || k == KindKeyword
}

// TaxonomyTag is a scraped classification with the item count shown next to it.
type TaxonomyTag struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Kind  TagKind `json:"kind"`
}

// Tag mirrors the `tags` PostgreSQL table schema.
type Tag struct {
	ID        int64
	Name      string
	Count     int
	Kind      TagKind
	CreatedAt time.Time
	UpdatedAt time.Time
}
