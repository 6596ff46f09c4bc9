package services

import (
	"context"
	"sync"

	"biolink-gateway/application/ports"
	"biolink-gateway/domain/core/valueobjects"

	"go.uber.org/zap"
)

// TaxonMapLoader builds the taxon id to name map from the Species nodes of
// the graph store. The map is built at most once per loader; a failed build
// is not remembered, so the next Load retries.
type TaxonMapLoader struct {
	store  ports.GraphStore
	logger *zap.Logger

	mu     sync.Mutex
	taxa   valueobjects.TaxonMap
	loaded bool
}

// NewTaxonMapLoader creates a new taxon map loader
func NewTaxonMapLoader(store ports.GraphStore, logger *zap.Logger) *TaxonMapLoader {
	return &TaxonMapLoader{
		store:  store,
		logger: logger,
	}
}

// Load returns the taxon map, querying the store on first use only
func (l *TaxonMapLoader) Load(ctx context.Context) (valueobjects.TaxonMap, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.taxa, nil
	}

	species, err := l.store.ListSpecies(ctx)
	if err != nil {
		return valueobjects.TaxonMap{}, err
	}

	entries := make(map[string]string, len(species))
	for _, node := range species {
		id := node.StringProp(propPrimaryKey)
		if id == "" {
			l.logger.Warn("Skipping species node without primaryKey",
				zap.String("elementID", node.ElementID),
			)
			continue
		}
		entries[id] = node.StringProp(propName)
	}

	l.taxa = valueobjects.NewTaxonMap(entries)
	l.loaded = true

	l.logger.Info("Taxon map loaded", zap.Int("taxa", l.taxa.Len()))
	return l.taxa, nil
}

// resolveTaxon looks a taxon id up in the loaded map
func resolveTaxon(ctx context.Context, source ports.TaxonSource, taxonID string) (string, error) {
	taxa, err := source.Load(ctx)
	if err != nil {
		return "", err
	}
	name, ok := taxa.Lookup(taxonID)
	if !ok {
		return "", lookupError("taxon map", taxonID)
	}
	return name, nil
}
