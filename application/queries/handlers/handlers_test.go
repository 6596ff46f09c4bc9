package handlers

import (
	"context"
	"testing"

	"biolink-gateway/application/queries"
	"biolink-gateway/application/queries/bus"
	"biolink-gateway/domain/core/aggregates"
	"biolink-gateway/domain/core/entities"
	"biolink-gateway/domain/core/valueobjects"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProviders struct {
	mock.Mock
}

func (m *mockProviders) GetEntity(ctx context.Context, id string, t valueobjects.EntityType) (*entities.Entity, error) {
	args := m.Called(ctx, id, t)
	if e := args.Get(0); e != nil {
		return e.(*entities.Entity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProviders) GetNodeGraph(ctx context.Context, id string, limit int) (*aggregates.GraphSnapshot, error) {
	args := m.Called(ctx, id, limit)
	if g := args.Get(0); g != nil {
		return g.(*aggregates.GraphSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProviders) GetGeneToPhenotype(ctx context.Context, geneID string) (*entities.AssociationResults, error) {
	args := m.Called(ctx, geneID)
	if r := args.Get(0); r != nil {
		return r.(*entities.AssociationResults), args.Error(1)
	}
	return nil, args.Error(1)
}

func newBus(t *testing.T, p *mockProviders) *bus.QueryBus {
	b := bus.NewQueryBus()
	require.NoError(t, RegisterAll(b, Providers{Entities: p, Graphs: p, Phenotypes: p}, zap.NewNop()))
	return b
}

func TestRegisterAll_RoutesQueries(t *testing.T) {
	ctx := context.Background()
	p := new(mockProviders)
	entity := &entities.Entity{ID: "GENE:1", Label: "abc1", Categories: []string{"gene"}}
	graph := aggregates.NewGraphSnapshot()
	assocs := entities.NewAssociationResults()
	p.On("GetEntity", ctx, "GENE:1", valueobjects.EntityTypeGene).Return(entity, nil)
	p.On("GetNodeGraph", ctx, "GENE:1", 5).Return(graph, nil)
	p.On("GetGeneToPhenotype", ctx, "GENE:1").Return(assocs, nil)
	b := newBus(t, p)

	got, err := b.Ask(ctx, queries.GetEntityQuery{ID: "GENE:1", Type: "Gene"})
	require.NoError(t, err)
	assert.Same(t, entity, got)

	got, err = b.Ask(ctx, queries.GetNodeGraphQuery{ID: "GENE:1", Limit: 5})
	require.NoError(t, err)
	assert.Same(t, graph, got)

	got, err = b.Ask(ctx, queries.GetGeneToPhenotypeQuery{GeneID: "GENE:1"})
	require.NoError(t, err)
	assert.Same(t, assocs, got)

	p.AssertExpectations(t)
}

func TestRegisterAll_TwiceFails(t *testing.T) {
	p := new(mockProviders)
	b := newBus(t, p)

	assert.Error(t, RegisterAll(b, Providers{Entities: p, Graphs: p, Phenotypes: p}, zap.NewNop()))
}

func TestHandlers_RejectForeignQuery(t *testing.T) {
	h := NewGetEntityHandler(new(mockProviders), zap.NewNop())

	_, err := h.Handle(context.Background(), queries.GetNodeGraphQuery{ID: "X:1"})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInternal))
}
