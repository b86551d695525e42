package document

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/user/catalog-scraper/internal/adapter/proxy"
	"github.com/user/catalog-scraper/internal/scraper"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// Options configures the static page fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	CacheSize int
	// Rotation, when set, picks a proxy and user agent per request.
	Rotation *proxy.Manager
}

// Fetcher retrieves static pages with colly and parses them with goquery. Response
// bodies are kept in an LRU cache, so detail pages shared by several sessions are
// downloaded once per process.
type Fetcher struct {
	collector *colly.Collector
	transport *contextTransport
	cache     *lru.Cache[string, []byte]
	rotation  *proxy.Manager
	logger    *zap.Logger
}

// NewFetcher creates a Fetcher. A CacheSize of zero disables caching.
func NewFetcher(opts Options, logger *zap.Logger) (*Fetcher, error) {
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.Timeout)

	var base http.RoundTripper
	if opts.Rotation != nil && opts.Rotation.HasProxies() {
		proxied := http.DefaultTransport.(*http.Transport).Clone()
		proxied.Proxy = opts.Rotation.ProxyFunc
		base = proxied
	}
	transport := newContextTransport(base)
	c.WithTransport(transport)

	f := &Fetcher{collector: c, transport: transport, rotation: opts.Rotation, logger: logger}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []byte](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		f.cache = cache
	}
	return f, nil
}

// WithTransport replaces the underlying HTTP transport, mainly for tests.
func (f *Fetcher) WithTransport(transport http.RoundTripper) {
	f.transport.setBase(transport)
}

// Fetch downloads url and returns the parsed document. Failures are scraper.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, scraper.FetchError{URL: url, Err: err}
	}

	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			metrics.DocumentFetchTotal.WithLabelValues("cached").Inc()
			return parse(url, body)
		}
	}

	body, err := f.download(ctx, url)
	if err != nil {
		metrics.DocumentFetchTotal.WithLabelValues("failed").Inc()
		f.logger.Warn("document fetch failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	metrics.DocumentFetchTotal.WithLabelValues("fetched").Inc()

	if f.cache != nil {
		f.cache.Add(url, body)
	}
	return parse(url, body)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	c := f.collector.Clone()

	id := uuid.NewString()
	untrack := f.transport.track(id, ctx)
	defer untrack()

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set(fetchIDHeader, id)
		if f.rotation != nil {
			if ua := f.rotation.GetUserAgent(); ua != "" {
				r.Headers.Set("User-Agent", ua)
			}
		}
	})

	var body []byte
	var status int
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, scraper.FetchError{URL: url, Err: ctxErr}
		}
		return nil, scraper.FetchError{URL: url, StatusCode: status, Err: err}
	}
	if body == nil {
		return nil, scraper.FetchError{URL: url, StatusCode: status, Err: errors.New("empty response")}
	}
	return body, nil
}

func parse(url string, body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, scraper.ParseError{Stage: "document " + url, Err: err}
	}
	return doc, nil
}
