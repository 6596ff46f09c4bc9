package valueobjects

// TaxonMap maps taxon identifiers to display names. It is immutable once
// built; the zero value is an empty map.
type TaxonMap struct {
	names map[string]string
}

// NewTaxonMap copies the given entries into a new TaxonMap
func NewTaxonMap(entries map[string]string) TaxonMap {
	names := make(map[string]string, len(entries))
	for id, name := range entries {
		names[id] = name
	}
	return TaxonMap{names: names}
}

// Lookup returns the display name for a taxon id
func (m TaxonMap) Lookup(id string) (string, bool) {
	name, ok := m.names[id]
	return name, ok
}

// Len returns the number of taxa in the map
func (m TaxonMap) Len() int {
	return len(m.names)
}

// IsZero reports whether the map has never been built
func (m TaxonMap) IsZero() bool {
	return m.names == nil
}
