package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/catalog-scraper/internal/delivery/http/handler"
	"github.com/user/catalog-scraper/internal/delivery/http/response"
	"github.com/user/catalog-scraper/internal/delivery/http/router"
	"github.com/user/catalog-scraper/internal/entity"
	"github.com/user/catalog-scraper/internal/usecase"
	"github.com/user/catalog-scraper/pkg/metrics"
	"go.uber.org/zap"
)

type listCall struct {
	tag           string
	limit, offset int
}

type fakeCatalog struct {
	items   []*entity.Item
	listErr error
	calls   []listCall
	byID    map[int64]*entity.Item
	getErr  error
}

func (f *fakeCatalog) ListItems(_ context.Context, tag string, limit, offset int) ([]*entity.Item, error) {
	f.calls = append(f.calls, listCall{tag, limit, offset})
	return f.items, f.listErr
}

func (f *fakeCatalog) GetItem(_ context.Context, id int64) (*entity.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if it, ok := f.byID[id]; ok {
		return it, nil
	}
	return nil, usecase.ErrItemNotFound
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, catalog usecase.CatalogReader, checks map[string]handler.HealthCheck, target string) (int, envelope) {
	t.Helper()
	metrics.Init()

	h := handler.NewHandler(catalog, checks, zap.NewNop())
	srv := router.New(h, zap.NewNop(), 5*time.Second)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHandleListItems(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		listErr    error
		wantStatus int
		wantBody   string
		wantCall   *listCall
	}{
		{
			name:       "defaults",
			target:     "/api/items",
			wantStatus: http.StatusOK,
			wantBody:   response.StatusSuccess,
			wantCall:   &listCall{tag: "", limit: 20, offset: 0},
		},
		{
			name:       "tag and paging",
			target:     "/api/items?tag=comedy&limit=500&offset=40",
			wantStatus: http.StatusOK,
			wantBody:   response.StatusSuccess,
			wantCall:   &listCall{tag: "comedy", limit: 100, offset: 40},
		},
		{
			name:       "bad limit",
			target:     "/api/items?limit=abc",
			wantStatus: http.StatusBadRequest,
			wantBody:   response.StatusFailed,
		},
		{
			name:       "negative offset",
			target:     "/api/items?offset=-1",
			wantStatus: http.StatusBadRequest,
			wantBody:   response.StatusFailed,
		},
		{
			name:       "storage failure",
			target:     "/api/items",
			listErr:    errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   response.StatusFailed,
			wantCall:   &listCall{tag: "", limit: 20, offset: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{
				items:   []*entity.Item{{ID: 1, Title: "The Caper", Year: 2001, Rating: 7.1}},
				listErr: tt.listErr,
			}
			code, body := serve(t, catalog, nil, tt.target)

			if code != tt.wantStatus {
				t.Errorf("status = %d, want %d", code, tt.wantStatus)
			}
			if body.Status != tt.wantBody {
				t.Errorf("envelope status = %q, want %q", body.Status, tt.wantBody)
			}
			if tt.wantCall == nil {
				if len(catalog.calls) != 0 {
					t.Errorf("catalog called for an invalid request: %v", catalog.calls)
				}
				return
			}
			if len(catalog.calls) != 1 || catalog.calls[0] != *tt.wantCall {
				t.Errorf("calls = %v, want %v", catalog.calls, *tt.wantCall)
			}
			if code == http.StatusOK {
				var items []response.ItemSummary
				if err := json.Unmarshal(body.Data, &items); err != nil {
					t.Fatalf("decode data: %v", err)
				}
				if len(items) != 1 || items[0].Title != "The Caper" {
					t.Errorf("data = %v", items)
				}
			} else if string(body.Data) != "[]" {
				t.Errorf("error data = %s, want []", body.Data)
			}
		})
	}
}

func TestHandleGetItem(t *testing.T) {
	catalog := &fakeCatalog{byID: map[int64]*entity.Item{
		3: {ID: 3, Title: "Heat", Directors: []string{"M. Director"}, Tags: []string{"Crime"}},
	}}

	code, body := serve(t, catalog, nil, "/api/items/3")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var item response.ItemDetail
	if err := json.Unmarshal(body.Data, &item); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if item.Title != "Heat" || len(item.Tags) != 1 || item.Cast == nil {
		t.Errorf("item = %+v", item)
	}

	if code, body := serve(t, catalog, nil, "/api/items/4"); code != http.StatusNotFound || body.Status != response.StatusFailed {
		t.Errorf("missing item: status = %d, envelope = %q", code, body.Status)
	}
	if code, _ := serve(t, catalog, nil, "/api/items/abc"); code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", code)
	}

	catalog.getErr = errors.New("timeout")
	if code, _ := serve(t, catalog, nil, "/api/items/3"); code != http.StatusInternalServerError {
		t.Errorf("storage failure: status = %d, want 500", code)
	}
}

func TestHandleHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	code, body := serve(t, &fakeCatalog{}, map[string]handler.HealthCheck{"postgres": ok, "redis": ok}, "/api/health")
	if code != http.StatusOK || body.Status != response.StatusSuccess {
		t.Errorf("healthy: status = %d, envelope = %q", code, body.Status)
	}

	code, body = serve(t, &fakeCatalog{}, map[string]handler.HealthCheck{"postgres": ok, "redis": down}, "/api/health")
	if code != http.StatusServiceUnavailable || body.Status != response.StatusFailed {
		t.Errorf("unhealthy: status = %d, envelope = %q", code, body.Status)
	}
	var services map[string]string
	if err := json.Unmarshal(body.Data, &services); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if services["redis"] != "unhealthy" || services["postgres"] != "healthy" {
		t.Errorf("services = %v", services)
	}
}
