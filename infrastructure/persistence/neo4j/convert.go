package neo4j

import (
	"fmt"

	"biolink-gateway/application/ports"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func toStoreNode(n dbtype.Node) ports.StoreNode {
	return ports.StoreNode{
		ElementID: n.ElementId,
		Labels:    n.Labels,
		Props:     n.Props,
	}
}

func toStoreRelationship(r dbtype.Relationship) ports.StoreRelationship {
	return ports.StoreRelationship{
		ElementID:      r.ElementId,
		Type:           r.Type,
		StartElementID: r.StartElementId,
		EndElementID:   r.EndElementId,
		Props:          r.Props,
	}
}

func toStorePath(p dbtype.Path) ports.StorePath {
	path := ports.StorePath{
		Nodes:         make([]ports.StoreNode, 0, len(p.Nodes)),
		Relationships: make([]ports.StoreRelationship, 0, len(p.Relationships)),
	}
	for _, n := range p.Nodes {
		path.Nodes = append(path.Nodes, toStoreNode(n))
	}
	for _, r := range p.Relationships {
		path.Relationships = append(path.Relationships, toStoreRelationship(r))
	}
	return path
}

func nodesFromRecords(records []*neo4j.Record, key string) ([]ports.StoreNode, error) {
	nodes := make([]ports.StoreNode, 0, len(records))
	for _, record := range records {
		value, ok := record.Get(key)
		if !ok {
			return nil, fmt.Errorf("record has no column %q", key)
		}
		node, ok := value.(dbtype.Node)
		if !ok {
			return nil, fmt.Errorf("unexpected type for node: got %T, expected dbtype.Node", value)
		}
		nodes = append(nodes, toStoreNode(node))
	}
	return nodes, nil
}

func pathsFromRecords(records []*neo4j.Record, key string) ([]ports.StorePath, error) {
	paths := make([]ports.StorePath, 0, len(records))
	for _, record := range records {
		value, ok := record.Get(key)
		if !ok {
			return nil, fmt.Errorf("record has no column %q", key)
		}
		path, ok := value.(dbtype.Path)
		if !ok {
			return nil, fmt.Errorf("unexpected type for path: got %T, expected dbtype.Path", value)
		}
		paths = append(paths, toStorePath(path))
	}
	return paths, nil
}
