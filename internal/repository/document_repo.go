package repository

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// DocumentFetcher retrieves a static page and parses it into a queryable document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}
