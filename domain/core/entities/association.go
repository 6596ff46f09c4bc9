package entities

// AssociationSubject is the subject side of an association, typically a gene.
type AssociationSubject struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Taxon *Taxon `json:"taxon,omitempty"`
}

// AssociationObject is the object side of an association, e.g. a phenotype term.
type AssociationObject struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Relation describes the relationship that links subject and object.
type Relation struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Association is one subject-relation-object statement read from a single
// relationship in the graph store.
type Association struct {
	ID       string             `json:"id"`
	Subject  AssociationSubject `json:"subject"`
	Object   AssociationObject  `json:"object"`
	Relation Relation           `json:"relation"`
}

// AssociationResults wraps a list of associations for a response payload.
type AssociationResults struct {
	Associations []Association `json:"associations"`
}

// NewAssociationResults returns an empty, non-nil result set
func NewAssociationResults() *AssociationResults {
	return &AssociationResults{Associations: []Association{}}
}
