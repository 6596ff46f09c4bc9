package queries

import "biolink-gateway/pkg/utils"

// GetGeneToPhenotypeQuery lists the phenotypes associated with a gene
type GetGeneToPhenotypeQuery struct {
	GeneID string `json:"gene_id" validate:"required,max=256"`
}

// Validate validates the query
func (q GetGeneToPhenotypeQuery) Validate() error {
	return utils.ValidateStruct(q)
}
