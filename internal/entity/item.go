package entity

// ItemRecord is one catalog entry as extracted from the listing and its detail pages.
type ItemRecord struct {
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Rating    float64  `json:"rating"`
	Summary   string   `json:"summary"`
	Directors []string `json:"directors"`
	Cast      []string `json:"cast"`
	Genres    []string `json:"genres"`
	Keywords  []string `json:"keywords"`
}

// Item mirrors the `items` PostgreSQL table schema together with its attached tag names.
type Item struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Rating    float64  `json:"rating"`
	Summary   string   `json:"summary"`
	Directors []string `json:"directors,omitempty"`
	Cast      []string `json:"cast,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}
