package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"biolink-gateway/application/ports"
	"biolink-gateway/domain/core/aggregates"
	pkgerrors "biolink-gateway/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultGraphTTL is how long a flattened neighborhood stays cached
const DefaultGraphTTL = 48 * time.Hour

const graphCacheName = "node_graph"

// NeighborhoodFlattener turns the one-hop neighborhood of a node into a
// GraphSnapshot. Results are cached per (id, limit); concurrent misses for
// the same key share one store query.
type NeighborhoodFlattener struct {
	store    ports.GraphStore
	snapshot *snapshotCache
}

// NewNeighborhoodFlattener creates a new neighborhood flattener. A ttl of
// zero selects DefaultGraphTTL.
func NewNeighborhoodFlattener(
	store ports.GraphStore,
	cache ports.Cache,
	ttl time.Duration,
	observer ports.CacheObserver,
	logger *zap.Logger,
) *NeighborhoodFlattener {
	return &NeighborhoodFlattener{
		store:    store,
		snapshot: newSnapshotCache(cache, ttl, observer, logger),
	}
}

// GraphCacheKey is the cache key for a neighborhood request
func GraphCacheKey(id string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	return fmt.Sprintf("graph:node:%s:limit:%d", id, limit)
}

// GetNodeGraph returns the flattened one-hop neighborhood of id
func (f *NeighborhoodFlattener) GetNodeGraph(ctx context.Context, id string, limit int) (*aggregates.GraphSnapshot, error) {
	return f.snapshot.fetch(ctx, GraphCacheKey(id, limit), func(ctx context.Context) (*aggregates.GraphSnapshot, error) {
		paths, err := f.store.Neighborhood(ctx, id, limit)
		if err != nil {
			return nil, err
		}
		return FlattenPaths(paths)
	})
}

// Invalidate drops every cached neighborhood
func (f *NeighborhoodFlattener) Invalidate(ctx context.Context) error {
	return f.snapshot.cache.Clear(ctx)
}

// CachedNeighborhood adds the neighborhood cache to any provider
type CachedNeighborhood struct {
	next     ports.NeighborhoodProvider
	snapshot *snapshotCache
}

// NewCachedNeighborhood wraps next with a per (id, limit) cache
func NewCachedNeighborhood(
	next ports.NeighborhoodProvider,
	cache ports.Cache,
	ttl time.Duration,
	observer ports.CacheObserver,
	logger *zap.Logger,
) *CachedNeighborhood {
	return &CachedNeighborhood{
		next:     next,
		snapshot: newSnapshotCache(cache, ttl, observer, logger),
	}
}

// GetNodeGraph returns the cached neighborhood or asks the wrapped provider
func (c *CachedNeighborhood) GetNodeGraph(ctx context.Context, id string, limit int) (*aggregates.GraphSnapshot, error) {
	return c.snapshot.fetch(ctx, GraphCacheKey(id, limit), func(ctx context.Context) (*aggregates.GraphSnapshot, error) {
		return c.next.GetNodeGraph(ctx, id, limit)
	})
}

// Invalidate drops every cached neighborhood
func (c *CachedNeighborhood) Invalidate(ctx context.Context) error {
	return c.snapshot.cache.Clear(ctx)
}

// FlattenPaths walks every relationship of every path once. Nodes are
// deduplicated by their store element id; edges are appended as
// (start primaryKey, relationship type, end primaryKey).
func FlattenPaths(paths []ports.StorePath) (*aggregates.GraphSnapshot, error) {
	snapshot := aggregates.NewGraphSnapshot()

	for _, path := range paths {
		for _, rel := range path.Relationships {
			start, end, err := path.Endpoints(rel)
			if err != nil {
				return nil, err
			}

			snapshot.AddNode(start.ElementID, snapshotNode(start))
			snapshot.AddNode(end.ElementID, snapshotNode(end))
			snapshot.AddEdge(aggregates.SnapshotEdge{
				Subject:   start.StringProp(propPrimaryKey),
				Predicate: rel.Type,
				Object:    end.StringProp(propPrimaryKey),
			})
		}
	}

	return snapshot, nil
}

func snapshotNode(n ports.StoreNode) aggregates.SnapshotNode {
	return aggregates.SnapshotNode{
		ID:    n.StringProp(propPrimaryKey),
		Label: n.StringProp(propName),
	}
}

// snapshotCache stores encoded snapshots and coalesces concurrent misses
type snapshotCache struct {
	cache    ports.Cache
	ttl      time.Duration
	observer ports.CacheObserver
	logger   *zap.Logger

	group singleflight.Group
}

func newSnapshotCache(cache ports.Cache, ttl time.Duration, observer ports.CacheObserver, logger *zap.Logger) *snapshotCache {
	if ttl <= 0 {
		ttl = DefaultGraphTTL
	}
	if observer == nil {
		observer = ports.NopCacheObserver{}
	}
	return &snapshotCache{
		cache:    cache,
		ttl:      ttl,
		observer: observer,
		logger:   logger,
	}
}

func (s *snapshotCache) fetch(ctx context.Context, key string, load func(context.Context) (*aggregates.GraphSnapshot, error)) (*aggregates.GraphSnapshot, error) {
	if snapshot, ok := s.cached(ctx, key); ok {
		s.observer.ObserveCache(graphCacheName, true)
		return snapshot, nil
	}
	s.observer.ObserveCache(graphCacheName, false)

	// The shared load must not be cancelled by whichever caller arrived
	// first; the backend applies its own timeout. Each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	results := s.group.DoChan(key, func() (interface{}, error) {
		snapshot, err := load(shared)
		if err != nil {
			return nil, err
		}
		s.remember(shared, key, snapshot)
		return snapshot, nil
	})

	select {
	case <-ctx.Done():
		return nil, abandoned(ctx.Err(), "node graph "+key)
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*aggregates.GraphSnapshot), nil
	}
}

// abandoned maps a caller's own context error onto the error taxonomy
func abandoned(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.NewTimeoutError(operation).WithCause(err)
	}
	return pkgerrors.NewCanceledError(operation).WithCause(err)
}

func (s *snapshotCache) cached(ctx context.Context, key string) (*aggregates.GraphSnapshot, bool) {
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Graph cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var snapshot aggregates.GraphSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("Discarding undecodable graph cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &snapshot, true
}

func (s *snapshotCache) remember(ctx context.Context, key string, snapshot *aggregates.GraphSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("Failed to encode graph snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Graph cache write failed", zap.String("key", key), zap.Error(err))
	}
}
