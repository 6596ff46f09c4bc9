package ports

import (
	"context"
	"time"

	"biolink-gateway/domain/core/aggregates"
	"biolink-gateway/domain/core/entities"
	"biolink-gateway/domain/core/valueobjects"
)

// EntityProvider resolves a single bioentity. An empty entity type matches
// any type.
type EntityProvider interface {
	GetEntity(ctx context.Context, id string, entityType valueobjects.EntityType) (*entities.Entity, error)
}

// NeighborhoodProvider builds the one-hop graph around an identifier.
// limit <= 0 means no cap.
type NeighborhoodProvider interface {
	GetNodeGraph(ctx context.Context, id string, limit int) (*aggregates.GraphSnapshot, error)
}

// PhenotypeProvider lists gene to phenotype associations
type PhenotypeProvider interface {
	GetGeneToPhenotype(ctx context.Context, geneID string) (*entities.AssociationResults, error)
}

// TaxonSource yields the process-wide taxon map
type TaxonSource interface {
	Load(ctx context.Context) (valueobjects.TaxonMap, error)
}

// Cache defines a byte-oriented cache with per-entry expiry
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Clock abstracts time so expiry can be tested deterministically
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time { return time.Now() }

// CacheObserver receives cache hit/miss notifications for metrics
type CacheObserver interface {
	ObserveCache(cache string, hit bool)
}

// NopCacheObserver discards observations
type NopCacheObserver struct{}

// ObserveCache does nothing
func (NopCacheObserver) ObserveCache(string, bool) {}
