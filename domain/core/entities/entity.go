package entities

// Taxon identifies the organism a biological entity belongs to.
type Taxon struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Entity is the canonical, flattened view of one record in the backing
// graph store. Categories holds the single type label inferred from the
// store record.
type Entity struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Categories  []string `json:"categories"`
	Taxon       *Taxon   `json:"taxon,omitempty"`
	Description string   `json:"description,omitempty"`
}

// HasTaxon reports whether a taxon was resolved for the entity
func (e *Entity) HasTaxon() bool {
	return e.Taxon != nil && e.Taxon.ID != ""
}
