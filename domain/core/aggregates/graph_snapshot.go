package aggregates

// SnapshotNode is a node in a graph snapshot. Field names follow the bbop
// graph JSON format consumed by graph viewers.
type SnapshotNode struct {
	ID    string `json:"id"`
	Label string `json:"lbl"`
}

// SnapshotEdge is a subject-predicate-object triple.
type SnapshotEdge struct {
	Subject   string `json:"sub"`
	Predicate string `json:"pred"`
	Object    string `json:"obj"`
}

// GraphSnapshot is a node/edge projection of the neighborhood around one
// identifier. Nodes are unique by their backing-store identity; edges are
// kept as read, duplicates included.
type GraphSnapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`

	seen map[string]struct{}
}

// NewGraphSnapshot creates an empty snapshot ready to be filled
func NewGraphSnapshot() *GraphSnapshot {
	return &GraphSnapshot{
		Nodes: []SnapshotNode{},
		Edges: []SnapshotEdge{},
		seen:  make(map[string]struct{}),
	}
}

// AddNode appends the node unless a node with the same store identity was
// already added through AddNode. It reports whether the node was appended.
// Identities are never derived from node ids, so a snapshot decoded from
// JSON only tracks identities added after decoding.
func (g *GraphSnapshot) AddNode(identity string, node SnapshotNode) bool {
	if g.seen == nil {
		g.seen = make(map[string]struct{})
	}
	if _, ok := g.seen[identity]; ok {
		return false
	}
	g.seen[identity] = struct{}{}
	g.Nodes = append(g.Nodes, node)
	return true
}

// AddEdge appends an edge
func (g *GraphSnapshot) AddEdge(edge SnapshotEdge) {
	g.Edges = append(g.Edges, edge)
}

// NodeCount returns the number of unique nodes
func (g *GraphSnapshot) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges
func (g *GraphSnapshot) EdgeCount() int {
	return len(g.Edges)
}
