package handlers

import (
	"context"
	"net/http"
	"strconv"

	"biolink-gateway/application/queries"
	querybus "biolink-gateway/application/queries/bus"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CacheInvalidator drops every cached neighborhood
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// GraphHandler serves neighborhood graphs
type GraphHandler struct {
	responder
	queryBus *querybus.QueryBus
	cache    CacheInvalidator
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, cache CacheInvalidator, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		responder: responder{errors: errorHandler, logger: logger},
		queryBus:  queryBus,
		cache:     cache,
	}
}

// GetNodeGraph handles GET /graph/node/{id}?limit=N
func (h *GraphHandler) GetNodeGraph(w http.ResponseWriter, r *http.Request) {
	query := queries.GetNodeGraphQuery{ID: chi.URLParam(r, "id")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, pkgerrors.NewValidationError("limit must be an integer").
				WithDetails(map[string]interface{}{"limit": raw}))
			return
		}
		query.Limit = limit
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ClearCache handles DELETE /graph/node/cache
func (h *GraphHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.respondError(w, r, pkgerrors.NewInternalError("failed to clear graph cache").WithCause(err))
		return
	}

	h.logger.Info("Graph cache cleared", zap.String("remoteAddr", r.RemoteAddr))
	w.WriteHeader(http.StatusNoContent)
}
