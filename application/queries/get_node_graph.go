package queries

import "biolink-gateway/pkg/utils"

// MaxGraphLimit caps the number of neighborhood paths a caller may request
const MaxGraphLimit = 10000

// GetNodeGraphQuery asks for the one-hop neighborhood of a node. A zero
// limit returns every path.
type GetNodeGraphQuery struct {
	ID    string `json:"id" validate:"required,max=256"`
	Limit int    `json:"limit,omitempty" validate:"gte=0,lte=10000"`
}

// Validate validates the query
func (q GetNodeGraphQuery) Validate() error {
	return utils.ValidateStruct(q)
}
