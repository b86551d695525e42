package document

import (
	"context"
	"net/http"
	"sync"
)

// fetchIDHeader carries the fetch id from colly's OnRequest hook to the transport.
// It is stripped before the request leaves the process.
const fetchIDHeader = "X-Catalog-Fetch-Id"

// contextTransport binds colly requests to the context of the Fetch call that issued
// them, so cancelling the caller aborts the HTTP exchange.
type contextTransport struct {
	mu       sync.RWMutex
	base     http.RoundTripper
	inflight sync.Map // fetch id -> context.Context
}

func newContextTransport(base http.RoundTripper) *contextTransport {
	return &contextTransport{base: base}
}

func (t *contextTransport) setBase(base http.RoundTripper) {
	t.mu.Lock()
	t.base = base
	t.mu.Unlock()
}

func (t *contextTransport) track(id string, ctx context.Context) func() {
	t.inflight.Store(id, ctx)
	return func() { t.inflight.Delete(id) }
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if id := req.Header.Get(fetchIDHeader); id != "" {
		ctx := req.Context()
		if v, ok := t.inflight.Load(id); ok {
			ctx = v.(context.Context)
		}
		req = req.Clone(ctx)
		req.Header.Del(fetchIDHeader)
	}

	t.mu.RLock()
	base := t.base
	t.mu.RUnlock()
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
