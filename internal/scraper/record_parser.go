package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"github.com/user/catalog-scraper/pkg/utils"
)

// Placeholder is stored for text fields the listing entry does not carry.
const Placeholder = "N/A"

var ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)

// RecordParser turns one listing entry into an ItemRecord. Besides the entry markup it
// fetches the item's detail page and its keywords page.
type RecordParser struct {
	fetcher   repository.DocumentFetcher
	baseURL   *url.URL
	selectors Selectors
}

// NewRecordParser creates a parser resolving relative links against baseURL.
func NewRecordParser(fetcher repository.DocumentFetcher, baseURL string, selectors Selectors) (*RecordParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return &RecordParser{fetcher: fetcher, baseURL: base, selectors: selectors}, nil
}

// Parse extracts a record from entry. Absent sub-fields fall back to defaults. Failed
// detail or keyword fetches leave the matching lists empty and are reported in the
// returned error, but the record is still usable.
func (p *RecordParser) Parse(ctx context.Context, entry *goquery.Selection) (entity.ItemRecord, error) {
	record := entity.ItemRecord{
		Title:     p.parseTitle(entry),
		Year:      p.parseYear(entry),
		Rating:    p.parseRating(entry),
		Summary:   Placeholder,
		Directors: []string{},
		Cast:      []string{},
		Genres:    []string{},
		Keywords:  []string{},
	}
	if summary := textOf(entry.Find(p.selectors.ItemSummary).First()); summary != "" {
		record.Summary = summary
	}

	href, ok := entry.Find(p.selectors.ItemDetailURL).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return record, nil
	}
	detailURL, err := utils.ToAbsoluteURL(p.baseURL, strings.TrimSpace(href))
	if err != nil {
		return record, ParseError{Stage: "detail link", Err: err}
	}

	var errs []error
	if doc, err := p.fetch(ctx, detailURL); err != nil {
		errs = append(errs, err)
	} else {
		record.Directors = labelledNames(doc.Selection, "Director", "Directors")
		record.Cast = labelledNames(doc.Selection, "Star", "Stars")
		record.Genres = collectText(doc.Find(p.selectors.DetailGenres))
	}

	keywordsURL, err := keywordsPage(detailURL)
	if err != nil {
		errs = append(errs, ParseError{Stage: "keywords link", Err: err})
		return record, errors.Join(errs...)
	}
	if doc, err := p.fetch(ctx, keywordsURL); err != nil {
		errs = append(errs, err)
	} else {
		record.Keywords = collectText(doc.Find(p.selectors.KeywordItem).Find("a"))
	}

	return record, errors.Join(errs...)
}

func (p *RecordParser) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	doc, err := p.fetcher.Fetch(ctx, rawURL)
	if err == nil {
		return doc, nil
	}
	var fetchErr FetchError
	if errors.As(err, &fetchErr) {
		return nil, err
	}
	return nil, FetchError{URL: rawURL, Err: err}
}

func (p *RecordParser) parseTitle(entry *goquery.Selection) string {
	title := textOf(entry.Find(p.selectors.ItemTitle).First())
	title = strings.TrimSpace(ordinalPrefix.ReplaceAllString(title, ""))
	if title == "" {
		return Placeholder
	}
	return title
}

func (p *RecordParser) parseYear(entry *goquery.Selection) int {
	year, err := strconv.Atoi(textOf(entry.Find(p.selectors.ItemYear).First()))
	if err != nil || year < 0 {
		return 0
	}
	return year
}

func (p *RecordParser) parseRating(entry *goquery.Selection) float64 {
	rating, err := strconv.ParseFloat(textOf(entry.Find(p.selectors.ItemRating).First()), 64)
	if err != nil || rating < 0 {
		return 0
	}
	return rating
}

// labelledNames finds the first list item headed by one of labels and returns the link
// texts inside it, excluding the label itself.
func labelledNames(root *goquery.Selection, labels ...string) []string {
	heading := root.Find("li span, li a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		text := textOf(s)
		for _, label := range labels {
			if text == label {
				return true
			}
		}
		return false
	}).First()
	if heading.Length() == 0 {
		return []string{}
	}
	item := heading.Closest("li")
	if item.Length() == 0 {
		return []string{}
	}
	return collectText(item.Find("a").NotSelection(heading))
}

// collectText returns the trimmed, non-empty, de-duplicated texts of sel in document order.
func collectText(sel *goquery.Selection) []string {
	out := []string{}
	seen := make(map[string]struct{})
	sel.Each(func(_ int, s *goquery.Selection) {
		text := textOf(s)
		if text == "" {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

func keywordsPage(detailURL string) (string, error) {
	u, err := url.Parse(detailURL)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/") + "/keywords/"
	return u.String(), nil
}

func textOf(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
