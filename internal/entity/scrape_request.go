package entity

// Filter selects the listing a session is scoped to. Exactly one tag kind is set.
type Filter struct {
	Kind TagKind `json:"kind"`
	Name string  `json:"name"`
}

// GenreFilter returns a filter on the given genre.
func GenreFilter(name string) Filter {
	return Filter{Kind: KindGenre, Name: name}
}

// KeywordFilter returns a filter on the given keyword.
func KeywordFilter(name string) Filter {
	return Filter{Kind: KindKeyword, Name: name}
}

// IsZero reports whether no usable filter was provided.
func (f Filter) IsZero() bool {
	return !f.Kind.Valid() || f.Name == ""
}

// ScrapeRequest is built per caller request and consumed once by the orchestrator.
type ScrapeRequest struct {
	TotalRequested  int
	Filter          Filter
	SessionCapacity int
}
