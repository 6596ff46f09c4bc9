package aggregates

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphSnapshot_AddNodeDeduplicatesByIdentity(t *testing.T) {
	g := NewGraphSnapshot()

	assert.True(t, g.AddNode("4:abc:1", SnapshotNode{ID: "GENE:1", Label: "abc1"}))
	assert.False(t, g.AddNode("4:abc:1", SnapshotNode{ID: "GENE:1", Label: "abc1"}))
	// Same external id but a different store identity is a different node.
	assert.True(t, g.AddNode("4:abc:2", SnapshotNode{ID: "GENE:1", Label: "abc1 copy"}))

	assert.Equal(t, 2, g.NodeCount())
}

func TestGraphSnapshot_EdgesAreNotDeduplicated(t *testing.T) {
	g := NewGraphSnapshot()
	e := SnapshotEdge{Subject: "A", Predicate: "INTERACTS_WITH", Object: "B"}

	g.AddEdge(e)
	g.AddEdge(e)

	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraphSnapshot_JSONShape(t *testing.T) {
	g := NewGraphSnapshot()
	g.AddNode("1", SnapshotNode{ID: "A", Label: "a"})
	g.AddEdge(SnapshotEdge{Subject: "A", Predicate: "p", Object: "B"})

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[{"id":"A","lbl":"a"}],"edges":[{"sub":"A","pred":"p","obj":"B"}]}`, string(data))

}

func TestGraphSnapshot_IdentityIsNeverTheNodeID(t *testing.T) {
	data, err := json.Marshal(&GraphSnapshot{Nodes: []SnapshotNode{{ID: "GENE:1", Label: "abc1"}}})
	require.NoError(t, err)

	var decoded GraphSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	// "GENE:1" is an external id, not a store identity, so it does not collide.
	assert.True(t, decoded.AddNode("GENE:1", SnapshotNode{ID: "GENE:2", Label: "other"}))
	assert.False(t, decoded.AddNode("GENE:1", SnapshotNode{ID: "GENE:2", Label: "other"}))
	assert.Equal(t, 2, decoded.NodeCount())
}

func TestGraphSnapshot_EmptyMarshalsAsArrays(t *testing.T) {
	data, err := json.Marshal(NewGraphSnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}
