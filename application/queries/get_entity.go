package queries

import (
	"biolink-gateway/domain/core/valueobjects"
	"biolink-gateway/pkg/utils"

	"github.com/go-playground/validator/v10"
)

func init() {
	utils.RegisterValidation("entitytype", func(fl validator.FieldLevel) bool {
		_, ok := valueobjects.ParseEntityType(fl.Field().String())
		return ok
	})
}

// GetEntityQuery looks up a single bioentity by identifier, optionally
// restricted to one entity type.
type GetEntityQuery struct {
	ID   string `json:"id" validate:"required,max=256"`
	Type string `json:"type,omitempty" validate:"omitempty,entitytype"`
}

// Validate validates the query
func (q GetEntityQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// EntityType returns the normalised entity type, empty when unrestricted
func (q GetEntityQuery) EntityType() valueobjects.EntityType {
	if q.Type == "" {
		return ""
	}
	t, _ := valueobjects.ParseEntityType(q.Type)
	return t
}
