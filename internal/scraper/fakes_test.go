package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-scraper/internal/repository"
)

const testBaseURL = "https://catalog.test/"

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	f.mu.Unlock()
	if !ok {
		return nil, FetchError{URL: url, StatusCode: 404, Err: errors.New("Not Found")}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(page))
}

type fakeSession struct {
	markup    func(clicks int) string
	failClick int
	clicks    []string
	scrolled  bool
	opened    string
	closed    bool
	openErr   error
}

func (s *fakeSession) Open(_ context.Context, url string) error {
	s.opened = url
	return s.openErr
}

func (s *fakeSession) Click(_ context.Context, locator string) error {
	if s.failClick > 0 && len(s.clicks)+1 == s.failClick {
		return errors.New("waiting for selector: context deadline exceeded")
	}
	s.clicks = append(s.clicks, locator)
	return nil
}

func (s *fakeSession) ScrollPage(context.Context) error {
	s.scrolled = true
	return nil
}

func (s *fakeSession) Content(context.Context) (string, error) {
	return s.markup(len(s.clicks)), nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeFactory struct {
	sessions []*fakeSession
	next     func() *fakeSession
}

func (f *fakeFactory) NewSession(context.Context) (repository.BrowserSession, error) {
	s := f.next()
	f.sessions = append(f.sessions, s)
	return s, nil
}

// listingPage renders a listing with n entries; entry i links to /title/tt<i>/.
func listingPage(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<li class="ipc-metadata-list-summary-item">
<h3 class="ipc-title__text">%d. Movie %d</h3>
<span class="dli-title-metadata-item">%d</span>
<span class="ipc-rating-star--rating">7.%d</span>
<div class="ipc-html-content-inner-div">Plot %d</div>
<a class="ipc-lockup-overlay ipc-focusable" href="/title/tt%d/?ref_=sr_t_%d"></a>
</li>`, i, i, 1990+i%30, i%10, i, i, i)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}
