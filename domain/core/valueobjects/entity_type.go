package valueobjects

import (
	"sort"
	"strings"
)

// EntityType is the caller-facing name of a bioentity type, e.g. "gene".
type EntityType string

const (
	EntityTypeGene      EntityType = "gene"
	EntityTypeGOTerm    EntityType = "goterm"
	EntityTypeDisease   EntityType = "disease"
	EntityTypePhenotype EntityType = "phenotype"
)

// entityTypeLabels maps entity types to node labels in the graph store.
// Labels are interpolated into Cypher, so only values from this table may
// ever reach a query.
var entityTypeLabels = map[EntityType]string{
	EntityTypeGene:      "Gene",
	EntityTypeGOTerm:    "GOTerm",
	EntityTypeDisease:   "DOTerm",
	EntityTypePhenotype: "Phenotype",
}

// ParseEntityType normalises a raw type name. The second return value is
// false when the name is not a known type.
func ParseEntityType(raw string) (EntityType, bool) {
	t := EntityType(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := entityTypeLabels[t]
	return t, ok
}

// StoreLabel returns the graph-store node label for the type
func (t EntityType) StoreLabel() (string, bool) {
	label, ok := entityTypeLabels[t]
	return label, ok
}

// String returns the type name
func (t EntityType) String() string {
	return string(t)
}

// KnownEntityTypes lists every supported type name in sorted order
func KnownEntityTypes() []string {
	names := make([]string, 0, len(entityTypeLabels))
	for t := range entityTypeLabels {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}
