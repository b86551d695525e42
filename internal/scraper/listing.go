package scraper

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/user/catalog-scraper/internal/entity"
)

// ListingURL builds the search listing URL showing pageSize items per view, scoped to
// filter. A zero filter yields the unscoped listing.
func ListingURL(baseURL, listingPath string, pageSize int, filter entity.Filter) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	ref, err := url.Parse(listingPath)
	if err != nil {
		return "", fmt.Errorf("invalid listing path %q: %w", listingPath, err)
	}
	u := base.ResolveReference(ref)

	q := u.Query()
	if pageSize > 0 {
		q.Set("count", strconv.Itoa(pageSize))
	}
	switch filter.Kind {
	case entity.KindGenre:
		q.Set("genres", filter.Name)
	case entity.KindKeyword:
		q.Set("keywords", filter.Name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
