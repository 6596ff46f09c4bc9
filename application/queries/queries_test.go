package queries

import (
	"strings"
	"testing"

	"biolink-gateway/domain/core/valueobjects"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestGetEntityQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   GetEntityQuery
		wantErr bool
	}{
		{"untyped", GetEntityQuery{ID: "GENE:1"}, false},
		{"typed", GetEntityQuery{ID: "GENE:1", Type: "gene"}, false},
		{"type is case insensitive", GetEntityQuery{ID: "GO:0008150", Type: "GOTerm"}, false},
		{"missing id", GetEntityQuery{Type: "gene"}, true},
		{"id too long", GetEntityQuery{ID: strings.Repeat("x", 257)}, true},
		{"unknown type", GetEntityQuery{ID: "GENE:1", Type: "widget"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEntityQuery_EntityType(t *testing.T) {
	assert.Equal(t, valueobjects.EntityType(""), GetEntityQuery{ID: "X:1"}.EntityType())
	assert.Equal(t, valueobjects.EntityTypeGOTerm, GetEntityQuery{ID: "X:1", Type: " GOTerm "}.EntityType())
}

func TestGetNodeGraphQuery_Validate(t *testing.T) {
	assert.NoError(t, GetNodeGraphQuery{ID: "ZFIN:ZDB-GENE-1"}.Validate())
	assert.NoError(t, GetNodeGraphQuery{ID: "GENE:1", Limit: MaxGraphLimit}.Validate())
	assert.Error(t, GetNodeGraphQuery{ID: "GENE:1", Limit: -1}.Validate())
	assert.Error(t, GetNodeGraphQuery{ID: "GENE:1", Limit: MaxGraphLimit + 1}.Validate())
	assert.Error(t, GetNodeGraphQuery{}.Validate())
}

func TestGetGeneToPhenotypeQuery_Validate(t *testing.T) {
	assert.NoError(t, GetGeneToPhenotypeQuery{GeneID: "MGI:97490"}.Validate())
	assert.True(t, pkgerrors.IsValidation(GetGeneToPhenotypeQuery{}.Validate()))
}
