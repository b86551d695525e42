package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/user/catalog-scraper/internal/delivery/http/request"
	"github.com/user/catalog-scraper/internal/delivery/http/response"
	"github.com/user/catalog-scraper/internal/scraper"
	"github.com/user/catalog-scraper/internal/usecase"
	"go.uber.org/zap"
)

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	catalog usecase.CatalogReader
	checks  map[string]HealthCheck
	logger  *zap.Logger
}

func NewHandler(catalog usecase.CatalogReader, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		checks:  checks,
		logger:  logger,
	}
}

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	query, err := request.ParseListItems(r)
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.catalog.ListItems(r.Context(), query.Tag, query.Limit, query.Offset)
	if err != nil {
		var verr scraper.ValidationError
		if errors.As(err, &verr) {
			h.writeJSONError(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to list items", zap.String("tag", query.Tag), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.Envelope{
		Status:  response.StatusSuccess,
		Message: "Items retrieved",
		Data:    response.NewItemSummaries(items),
	})
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := request.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrItemNotFound) {
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get item", zap.Int64("id", id), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.Envelope{
		Status:  response.StatusSuccess,
		Message: "Item retrieved",
		Data:    response.NewItemDetail(item),
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("service", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, response.Envelope{
			Status:  response.StatusFailed,
			Message: "Service unhealthy",
			Data:    healthStatus,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, response.Envelope{
		Status:  response.StatusSuccess,
		Message: "ok",
		Data:    healthStatus,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.Envelope{
		Status:  response.StatusFailed,
		Message: message,
		Data:    []any{},
	})
}
