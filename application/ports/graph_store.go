package ports

import (
	"context"
	"fmt"
)

// StoreNode is a node as read from the backing graph store. ElementID is
// the store's internal identity and is stable for the lifetime of a
// transaction; it is never exposed to API callers.
type StoreNode struct {
	ElementID string
	Labels    []string
	Props     map[string]any
}

// StringProp returns a property rendered as a string, or "" when absent
func (n StoreNode) StringProp(key string) string {
	return stringProp(n.Props, key)
}

// HasProp reports whether the property is set to a non-empty value
func (n StoreNode) HasProp(key string) bool {
	return n.StringProp(key) != ""
}

// StoreRelationship is a relationship as read from the backing graph store
type StoreRelationship struct {
	ElementID      string
	Type           string
	StartElementID string
	EndElementID   string
	Props          map[string]any
}

// StringProp returns a property rendered as a string, or "" when absent
func (r StoreRelationship) StringProp(key string) string {
	return stringProp(r.Props, key)
}

// StorePath is one path result: its nodes and the relationships between them
type StorePath struct {
	Nodes         []StoreNode
	Relationships []StoreRelationship
}

// Node finds a node of the path by element id
func (p StorePath) Node(elementID string) (StoreNode, bool) {
	for _, n := range p.Nodes {
		if n.ElementID == elementID {
			return n, true
		}
	}
	return StoreNode{}, false
}

// Endpoints returns the start and end nodes of a relationship in the path
func (p StorePath) Endpoints(rel StoreRelationship) (start, end StoreNode, err error) {
	start, ok := p.Node(rel.StartElementID)
	if !ok {
		return StoreNode{}, StoreNode{}, fmt.Errorf("relationship %s: start node %s not in path", rel.ElementID, rel.StartElementID)
	}
	end, ok = p.Node(rel.EndElementID)
	if !ok {
		return StoreNode{}, StoreNode{}, fmt.Errorf("relationship %s: end node %s not in path", rel.ElementID, rel.EndElementID)
	}
	return start, end, nil
}

// GraphStore is the read-only query surface of the backing graph store.
// Every method issues exactly one query.
type GraphStore interface {
	// FindByPrimaryKey returns every node whose primaryKey equals the given
	// value, optionally restricted to one node label ("" matches any label).
	FindByPrimaryKey(ctx context.Context, primaryKey, label string) ([]StoreNode, error)

	// ListSpecies returns every Species node
	ListSpecies(ctx context.Context) ([]StoreNode, error)

	// Neighborhood returns all paths of length one around the node with the
	// given primaryKey. limit <= 0 means no cap.
	Neighborhood(ctx context.Context, primaryKey string, limit int) ([]StorePath, error)

	// GeneToPhenotype returns the paths from a Gene to its Phenotype nodes
	GeneToPhenotype(ctx context.Context, primaryKey string) ([]StorePath, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error
}

func stringProp(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
