package services

import (
	"context"
	"testing"

	"biolink-gateway/application/ports"
	"biolink-gateway/application/ports/mocks"
	"biolink-gateway/domain/core/entities"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPhenotypeWalker_OneAssociationPerRelationship(t *testing.T) {
	ctx := context.Background()
	gene := mocks.NewNodeBuilder("4:g:1", "GENE:1").
		WithLabels("Gene").
		WithProp("symbol", "abc1").
		WithProp("taxonId", "TAX:1").
		Build()
	named := mocks.NewNodeBuilder("4:p:1", "ZP:1").WithLabels("Phenotype").WithName("small eye").Build()
	unnamed := mocks.NewNodeBuilder("4:p:2", "ZP:2").WithLabels("Phenotype").Build()

	store := new(mocks.MockGraphStore)
	store.On("GeneToPhenotype", ctx, "GENE:1").Return([]ports.StorePath{
		mocks.NewPathBuilder().Link(gene, "HAS_PHENOTYPE", named).Build(),
		mocks.NewPathBuilder().Link(gene, "HAS_PHENOTYPE", unnamed).Build(),
	}, nil)

	walker := NewPhenotypeWalker(store, staticTaxa{"TAX:1": "Danio rerio"}, zap.NewNop())
	results, err := walker.GetGeneToPhenotype(ctx, "GENE:1")

	require.NoError(t, err)
	require.Len(t, results.Associations, 2)

	first := results.Associations[0]
	assert.Equal(t, "5:rel:1", first.ID)
	assert.Equal(t, entities.AssociationSubject{
		ID:    "GENE:1",
		Label: "abc1",
		Taxon: &entities.Taxon{ID: "TAX:1", Label: "Danio rerio"},
	}, first.Subject)
	assert.Equal(t, entities.AssociationObject{ID: "ZP:1", Label: "small eye"}, first.Object)
	assert.Equal(t, entities.Relation{ID: "rel-uuid-1", Label: "HAS_PHENOTYPE"}, first.Relation)

	assert.Equal(t, "ZP:2", results.Associations[1].Object.Label)
}

func TestPhenotypeWalker_NoPhenotypes(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockGraphStore)
	store.On("GeneToPhenotype", ctx, "GENE:9").Return([]ports.StorePath{}, nil)

	results, err := NewPhenotypeWalker(store, staticTaxa{}, zap.NewNop()).GetGeneToPhenotype(ctx, "GENE:9")

	require.NoError(t, err)
	assert.NotNil(t, results.Associations)
	assert.Empty(t, results.Associations)
}

func TestPhenotypeWalker_UnknownTaxon(t *testing.T) {
	ctx := context.Background()
	gene := mocks.NewNodeBuilder("4:g:1", "GENE:1").WithProp("taxonId", "TAX:404").Build()
	phenotype := mocks.NewNodeBuilder("4:p:1", "ZP:1").Build()
	store := new(mocks.MockGraphStore)
	store.On("GeneToPhenotype", mock.Anything, "GENE:1").Return([]ports.StorePath{
		mocks.NewPathBuilder().Link(gene, "HAS_PHENOTYPE", phenotype).Build(),
	}, nil)

	_, err := NewPhenotypeWalker(store, staticTaxa{}, zap.NewNop()).GetGeneToPhenotype(ctx, "GENE:1")

	assert.True(t, pkgerrors.IsLookup(err))
}
