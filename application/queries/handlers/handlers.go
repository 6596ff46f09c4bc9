package handlers

import (
	"context"
	"fmt"

	"biolink-gateway/application/ports"
	"biolink-gateway/application/queries"
	"biolink-gateway/application/queries/bus"
	pkgerrors "biolink-gateway/pkg/errors"

	"go.uber.org/zap"
)

// GetEntityHandler serves GetEntityQuery from an EntityProvider
type GetEntityHandler struct {
	entities ports.EntityProvider
	logger   *zap.Logger
}

// NewGetEntityHandler creates a new entity handler
func NewGetEntityHandler(entities ports.EntityProvider, logger *zap.Logger) *GetEntityHandler {
	return &GetEntityHandler{entities: entities, logger: logger}
}

// Handle executes the entity query
func (h *GetEntityHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetEntityQuery)
	if !ok {
		return nil, unexpected(q)
	}
	return h.entities.GetEntity(ctx, query.ID, query.EntityType())
}

// GetNodeGraphHandler serves GetNodeGraphQuery from a NeighborhoodProvider
type GetNodeGraphHandler struct {
	graphs ports.NeighborhoodProvider
	logger *zap.Logger
}

// NewGetNodeGraphHandler creates a new node graph handler
func NewGetNodeGraphHandler(graphs ports.NeighborhoodProvider, logger *zap.Logger) *GetNodeGraphHandler {
	return &GetNodeGraphHandler{graphs: graphs, logger: logger}
}

// Handle executes the node graph query
func (h *GetNodeGraphHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetNodeGraphQuery)
	if !ok {
		return nil, unexpected(q)
	}
	return h.graphs.GetNodeGraph(ctx, query.ID, query.Limit)
}

// GetGeneToPhenotypeHandler serves GetGeneToPhenotypeQuery
type GetGeneToPhenotypeHandler struct {
	phenotypes ports.PhenotypeProvider
	logger     *zap.Logger
}

// NewGetGeneToPhenotypeHandler creates a new gene phenotype handler
func NewGetGeneToPhenotypeHandler(phenotypes ports.PhenotypeProvider, logger *zap.Logger) *GetGeneToPhenotypeHandler {
	return &GetGeneToPhenotypeHandler{phenotypes: phenotypes, logger: logger}
}

// Handle executes the gene phenotype query
func (h *GetGeneToPhenotypeHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetGeneToPhenotypeQuery)
	if !ok {
		return nil, unexpected(q)
	}
	return h.phenotypes.GetGeneToPhenotype(ctx, query.GeneID)
}

// Providers bundles the backends the query handlers read from
type Providers struct {
	Entities   ports.EntityProvider
	Graphs     ports.NeighborhoodProvider
	Phenotypes ports.PhenotypeProvider
}

// RegisterAll registers every query handler on the bus
func RegisterAll(b *bus.QueryBus, p Providers, logger *zap.Logger) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetEntityQuery{}, NewGetEntityHandler(p.Entities, logger)},
		{queries.GetNodeGraphQuery{}, NewGetNodeGraphHandler(p.Graphs, logger)},
		{queries.GetGeneToPhenotypeQuery{}, NewGetGeneToPhenotypeHandler(p.Phenotypes, logger)},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func unexpected(q bus.Query) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", q))
}
