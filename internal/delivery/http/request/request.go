package request

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListItemsQuery holds the parsed query string of GET /api/items.
type ListItemsQuery struct {
	Tag    string
	Limit  int
	Offset int
}

// ParseListItems reads tag, limit and offset from the query string.
func ParseListItems(r *http.Request) (ListItemsQuery, error) {
	q := r.URL.Query()
	query := ListItemsQuery{Tag: q.Get("tag"), Limit: DefaultLimit}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return query, fmt.Errorf("limit must be a positive integer")
		}
		query.Limit = min(limit, MaxLimit)
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return query, fmt.Errorf("offset must be a non-negative integer")
		}
		query.Offset = offset
	}
	return query, nil
}

// ParseItemID validates the {id} path parameter.
func ParseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("item id must be a positive integer")
	}
	return id, nil
}
