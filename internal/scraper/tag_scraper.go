package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"go.uber.org/zap"
)

// TagScraper enumerates the whole taxonomy from the default listing page.
type TagScraper struct {
	fetcher  repository.DocumentFetcher
	sessions repository.SessionFactory
	cfg      ExecutorConfig
	pageSize int
	logger   *zap.Logger
}

// NewTagScraper creates a TagScraper. pageSize is the listing count parameter.
func NewTagScraper(fetcher repository.DocumentFetcher, sessions repository.SessionFactory, cfg ExecutorConfig, pageSize int, logger *zap.Logger) *TagScraper {
	return &TagScraper{
		fetcher:  fetcher,
		sessions: sessions,
		cfg:      cfg,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Scrape returns every genre and keyword tag with a positive count. Genres come from
// the static page; keywords are truncated there and need one browser expansion.
func (s *TagScraper) Scrape(ctx context.Context) ([]entity.TaxonomyTag, error) {
	listingURL, err := s.ListingURL()
	if err != nil {
		return nil, err
	}

	doc, err := s.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch genre listing: %w", err)
	}
	genres, err := s.extractTags(doc.Selection, s.cfg.Selectors.GenreSection, entity.KindGenre)
	if err != nil {
		return nil, err
	}

	keywordDoc, err := s.expandKeywords(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	keywords, err := s.extractTags(keywordDoc.Selection, s.cfg.Selectors.KeywordSection, entity.KindKeyword)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scraped taxonomy", zap.Int("genres", len(genres)), zap.Int("keywords", len(keywords)))
	return append(genres, keywords...), nil
}

// ListingURL is the unfiltered listing the taxonomy is read from.
func (s *TagScraper) ListingURL() (string, error) {
	listingURL, err := ListingURL(s.cfg.BaseURL, s.cfg.ListingPath, s.pageSize, entity.Filter{})
	if err != nil {
		return "", ValidationError{Reason: err.Error()}
	}
	return listingURL, nil
}

func (s *TagScraper) expandKeywords(ctx context.Context, listingURL string) (*goquery.Document, error) {
	session, err := s.sessions.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn("failed to close browser session", zap.String("url", listingURL), zap.Error(cerr))
		}
	}()

	if err := session.Open(ctx, listingURL); err != nil {
		return nil, FetchError{URL: listingURL, Err: err}
	}
	for i, locator := range []string{s.cfg.Selectors.ExpandKeywords, s.cfg.Selectors.SeeMoreKeywords} {
		if err := session.Click(ctx, locator); err != nil {
			return nil, InteractionError{Locator: locator, Attempt: i + 1, Err: err}
		}
	}
	if err := session.ScrollPage(ctx); err != nil {
		s.logger.Debug("scroll after keyword expansion failed", zap.Error(err))
	}

	markup, err := session.Content(ctx)
	if err != nil {
		return nil, FetchError{URL: listingURL, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, ParseError{Stage: "keyword listing", Err: err}
	}
	return doc, nil
}

// extractTags reads the chip buttons of one accordion section. A missing section yields
// no tags.
func (s *TagScraper) extractTags(root *goquery.Selection, section string, kind entity.TagKind) ([]entity.TaxonomyTag, error) {
	tags := []entity.TaxonomyTag{}
	var parseErr error
	root.Find(section).First().Find("button").EachWithBreak(func(_ int, button *goquery.Selection) bool {
		name := chipName(button.Find(s.cfg.Selectors.ChipName).First())
		if name == "" {
			return true
		}
		countSpan := button.Find(s.cfg.Selectors.ChipCount).First()
		if countSpan.Length() == 0 {
			return true
		}
		count, err := DecodeCount(countSpan.Text())
		if err != nil {
			parseErr = ParseError{Stage: fmt.Sprintf("%s count for %q", kind, name), Err: err}
			return false
		}
		if count > 0 {
			tags = append(tags, entity.TaxonomyTag{Name: name, Count: count, Kind: kind})
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return tags, nil
}

// chipName returns the chip's leading text node, ignoring nested count badges.
func chipName(span *goquery.Selection) string {
	if span.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(span.Contents().First().Text())
}
