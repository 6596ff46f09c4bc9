package handlers

import (
	"net/http"
	"strings"

	"biolink-gateway/application/queries"
	querybus "biolink-gateway/application/queries/bus"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BioentityHandler serves entity and association lookups
type BioentityHandler struct {
	responder
	queryBus *querybus.QueryBus
}

// NewBioentityHandler creates a new bioentity handler
func NewBioentityHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *BioentityHandler {
	return &BioentityHandler{
		responder: responder{errors: errorHandler, logger: logger},
		queryBus:  queryBus,
	}
}

// GetEntity handles GET /bioentity/{id} and GET /bioentity/{type}/{id}
func (h *BioentityHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	query := queries.GetEntityQuery{
		ID:   chi.URLParam(r, "id"),
		Type: strings.ToLower(chi.URLParam(r, "type")),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetGenePhenotypes handles GET /bioentity/gene/{id}/phenotypes
func (h *BioentityHandler) GetGenePhenotypes(w http.ResponseWriter, r *http.Request) {
	query := queries.GetGeneToPhenotypeQuery{GeneID: chi.URLParam(r, "id")}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
