package services

import (
	"context"
	"fmt"
	"strings"

	"biolink-gateway/application/ports"
	"biolink-gateway/domain/core/entities"
	"biolink-gateway/domain/core/valueobjects"
	pkgerrors "biolink-gateway/pkg/errors"

	"go.uber.org/zap"
)

// EntityResolver looks up a single bioentity by primaryKey and projects the
// matching store node into an Entity.
type EntityResolver struct {
	store  ports.GraphStore
	taxa   ports.TaxonSource
	logger *zap.Logger
}

// NewEntityResolver creates a new entity resolver
func NewEntityResolver(store ports.GraphStore, taxa ports.TaxonSource, logger *zap.Logger) *EntityResolver {
	return &EntityResolver{
		store:  store,
		taxa:   taxa,
		logger: logger,
	}
}

// GetEntity resolves id, optionally restricted to entityType.
//
// Zero matches is a not-found error. More than one match is rejected as a
// conflict because the store does not guarantee primaryKey uniqueness or
// any iteration order.
func (r *EntityResolver) GetEntity(ctx context.Context, id string, entityType valueobjects.EntityType) (*entities.Entity, error) {
	label := ""
	if entityType != "" {
		l, ok := entityType.StoreLabel()
		if !ok {
			return nil, lookupError("entity type map", entityType.String())
		}
		label = l
	}

	nodes, err := r.store.FindByPrimaryKey(ctx, id, label)
	if err != nil {
		return nil, err
	}

	switch len(nodes) {
	case 0:
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("entity '%s'", id))
	case 1:
	default:
		r.logger.Warn("Ambiguous primaryKey in graph store",
			zap.String("primaryKey", id),
			zap.String("label", label),
			zap.Int("matches", len(nodes)),
		)
		return nil, pkgerrors.NewConflictError(fmt.Sprintf("identifier '%s' matches %d entities", id, len(nodes))).
			WithDetails(map[string]interface{}{"matches": len(nodes)})
	}

	node := nodes[0]
	entity := &entities.Entity{
		ID:          node.StringProp(propPrimaryKey),
		Label:       node.StringProp(propName),
		Categories:  []string{category(node, entityType)},
		Description: node.StringProp(propDefinition),
	}

	if taxonID := node.StringProp(propTaxonID); taxonID != "" {
		name, err := resolveTaxon(ctx, r.taxa, taxonID)
		if err != nil {
			return nil, err
		}
		entity.Taxon = &entities.Taxon{ID: taxonID, Label: name}
	}

	return entity, nil
}

// category prefers the node's own type property, then the requested type,
// then the node's first label.
func category(node ports.StoreNode, requested valueobjects.EntityType) string {
	if t := node.StringProp(propType); t != "" {
		return t
	}
	if requested != "" {
		return requested.String()
	}
	if len(node.Labels) > 0 {
		return strings.ToLower(node.Labels[0])
	}
	return ""
}

func lookupError(table, key string) error {
	return pkgerrors.NewLookupError(table, key)
}
