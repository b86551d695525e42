package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/catalog-scraper/internal/delivery/http/handler"
	"github.com/user/catalog-scraper/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

// New wires the API routes. timeout bounds every request, lazy backfills included.
func New(h *handler.Handler, logger *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(timeout))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", h.HandleListItems)
		r.Get("/{id}", h.HandleGetItem)
	})

	return r
}
