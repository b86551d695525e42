package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EntryParser converts one listing entry into a record.
type EntryParser interface {
	Parse(ctx context.Context, entry *goquery.Selection) (entity.ItemRecord, error)
}

// SessionTarget scopes a session to one filtered listing.
type SessionTarget struct {
	Filter   entity.Filter
	PageSize int
}

// ExecutorConfig holds the settings a SessionExecutor needs.
type ExecutorConfig struct {
	BaseURL          string
	ListingPath      string
	ParseConcurrency int
	Selectors        Selectors
}

// SessionExecutor realizes one BatchStep against the live listing.
type SessionExecutor struct {
	sessions repository.SessionFactory
	parser   EntryParser
	cfg      ExecutorConfig
	logger   *zap.Logger
}

// NewSessionExecutor creates an executor opening sessions from sessions.
func NewSessionExecutor(sessions repository.SessionFactory, parser EntryParser, cfg ExecutorConfig, logger *zap.Logger) *SessionExecutor {
	if cfg.ParseConcurrency <= 0 {
		cfg.ParseConcurrency = 1
	}
	return &SessionExecutor{
		sessions: sessions,
		parser:   parser,
		cfg:      cfg,
		logger:   logger,
	}
}

// Execute opens a fresh session on target, performs step.CumulativeInteractions clicks,
// and parses the trailing step.ItemsToExtract entries. A listing that holds fewer
// entries than requested yields fewer records and a warning, not an error.
func (e *SessionExecutor) Execute(ctx context.Context, target SessionTarget, step entity.BatchStep) ([]entity.ItemRecord, error) {
	if target.Filter.IsZero() {
		return nil, ValidationError{Reason: "either a genre or a keyword is required"}
	}
	if step.ItemsToExtract <= 0 {
		return nil, ValidationError{Reason: "items to extract must be positive"}
	}
	if step.CumulativeInteractions < 0 {
		return nil, ValidationError{Reason: "interactions cannot be negative"}
	}

	listingURL, err := ListingURL(e.cfg.BaseURL, e.cfg.ListingPath, target.PageSize, target.Filter)
	if err != nil {
		return nil, ValidationError{Reason: err.Error()}
	}

	markup, err := e.revealListing(ctx, listingURL, step.CumulativeInteractions)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, ParseError{Stage: "listing", Err: err}
	}
	entries := doc.Find(e.cfg.Selectors.ListingItem)
	total := entries.Length()
	if total < step.ItemsToExtract {
		e.logger.Warn("listing holds fewer items than requested",
			zap.String("url", listingURL),
			zap.Int("requested", step.ItemsToExtract),
			zap.Int("available", total))
	}
	tail := entries.Slice(max(0, total-step.ItemsToExtract), total)

	e.logger.Info("parsing listing entries",
		zap.String("url", listingURL),
		zap.Int("interactions", step.CumulativeInteractions),
		zap.Int("entries", tail.Length()))
	return e.parseEntries(ctx, tail)
}

// revealListing drives one scoped session. Closing the session is always the last
// thing it does, whatever the outcome.
func (e *SessionExecutor) revealListing(ctx context.Context, listingURL string, interactions int) (markup string, err error) {
	session, err := e.sessions.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			e.logger.Warn("failed to close browser session", zap.String("url", listingURL), zap.Error(cerr))
		}
	}()

	if err := session.Open(ctx, listingURL); err != nil {
		return "", FetchError{URL: listingURL, Err: err}
	}

	locator := e.cfg.Selectors.SeeMoreButton
	for attempt := 1; attempt <= interactions; attempt++ {
		if err := session.Click(ctx, locator); err != nil {
			return "", InteractionError{Locator: locator, Attempt: attempt, Err: err}
		}
		e.logger.Debug("revealed more items", zap.String("url", listingURL), zap.Int("click", attempt))
	}

	markup, err = session.Content(ctx)
	if err != nil {
		return "", FetchError{URL: listingURL, Err: err}
	}
	return markup, nil
}

func (e *SessionExecutor) parseEntries(ctx context.Context, entries *goquery.Selection) ([]entity.ItemRecord, error) {
	parsed := make([]entity.ItemRecord, entries.Length())

	var g errgroup.Group
	g.SetLimit(e.cfg.ParseConcurrency)
	entries.Each(func(i int, entry *goquery.Selection) {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			record, err := e.parser.Parse(ctx, entry)
			if err != nil {
				e.logger.Warn("item parsed with missing details", zap.String("title", record.Title), zap.Error(err))
			}
			parsed[i] = record
			return nil
		})
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parsed, nil
}
