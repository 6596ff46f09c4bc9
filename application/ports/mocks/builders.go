package mocks

import (
	"fmt"

	"biolink-gateway/application/ports"
)

// NodeBuilder builds ports.StoreNode fixtures
type NodeBuilder struct {
	node ports.StoreNode
}

// NewNodeBuilder starts a node with the given element id and primaryKey
func NewNodeBuilder(elementID, primaryKey string) *NodeBuilder {
	return &NodeBuilder{node: ports.StoreNode{
		ElementID: elementID,
		Props:     map[string]any{"primaryKey": primaryKey},
	}}
}

// WithLabels sets the node labels
func (b *NodeBuilder) WithLabels(labels ...string) *NodeBuilder {
	b.node.Labels = labels
	return b
}

// WithProp sets a property
func (b *NodeBuilder) WithProp(key string, value any) *NodeBuilder {
	b.node.Props[key] = value
	return b
}

// WithName sets the name property
func (b *NodeBuilder) WithName(name string) *NodeBuilder {
	return b.WithProp("name", name)
}

// Build returns the node
func (b *NodeBuilder) Build() ports.StoreNode {
	return b.node
}

// PathBuilder builds ports.StorePath fixtures from node/relationship triples
type PathBuilder struct {
	path ports.StorePath
	seq  int
}

// NewPathBuilder starts an empty path
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{}
}

// Link adds start and end (once each) and a relationship between them
func (b *PathBuilder) Link(start ports.StoreNode, relType string, end ports.StoreNode) *PathBuilder {
	b.addNode(start)
	b.addNode(end)
	b.seq++
	b.path.Relationships = append(b.path.Relationships, ports.StoreRelationship{
		ElementID:      fmt.Sprintf("5:rel:%d", b.seq),
		Type:           relType,
		StartElementID: start.ElementID,
		EndElementID:   end.ElementID,
		Props:          map[string]any{"uuid": fmt.Sprintf("rel-uuid-%d", b.seq)},
	})
	return b
}

// Build returns the path
func (b *PathBuilder) Build() ports.StorePath {
	return b.path
}

func (b *PathBuilder) addNode(n ports.StoreNode) {
	if _, ok := b.path.Node(n.ElementID); !ok {
		b.path.Nodes = append(b.path.Nodes, n)
	}
}
