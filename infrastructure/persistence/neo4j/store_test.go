package neo4j

import (
	"context"
	"errors"
	"testing"
	"time"

	"biolink-gateway/infrastructure/resilience"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	args := m.Called(ctx, cypher, params)
	if r := args.Get(0); r != nil {
		return r.([]*neo4j.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReader) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockReader) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type recordedOp struct {
	op  string
	err error
}

type recordingObserver struct {
	ops []recordedOp
}

func (o *recordingObserver) ObserveDBOperation(op string, _ time.Duration, err error) {
	o.ops = append(o.ops, recordedOp{op: op, err: err})
}

func newTestStore(reader recordReader, observer OperationObserver) *Store {
	breaker := resilience.NewBreaker(resilience.DefaultCircuitBreakerConfig("neo4j"), zap.NewNop())
	return newStore(reader, breaker, observer, zap.NewNop())
}

func node(elementID, primaryKey string, labels ...string) dbtype.Node {
	return dbtype.Node{
		ElementId: elementID,
		Labels:    labels,
		Props:     map[string]any{"primaryKey": primaryKey, "name": primaryKey + "-name"},
	}
}

func rel(elementID, relType string, start, end dbtype.Node) dbtype.Relationship {
	return dbtype.Relationship{
		ElementId:      elementID,
		Type:           relType,
		StartElementId: start.ElementId,
		EndElementId:   end.ElementId,
		Props:          map[string]any{"uuid": elementID + "-uuid"},
	}
}

func record(key string, value any) *neo4j.Record {
	return &neo4j.Record{Keys: []string{key}, Values: []any{value}}
}

func TestCypher_FindByPrimaryKey(t *testing.T) {
	untyped, err := findByPrimaryKeyCypher("")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n {primaryKey: $primaryKey}) RETURN n", untyped)

	typed, err := findByPrimaryKeyCypher("GOTerm")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`GOTerm` {primaryKey: $primaryKey}) RETURN n", typed)

	_, err = findByPrimaryKeyCypher("Gene) DETACH DELETE n //")
	assert.Error(t, err)
}

func TestCypher_NeighborhoodLimit(t *testing.T) {
	cypher, params := neighborhoodCypher(0)
	assert.NotContains(t, cypher, "LIMIT")
	assert.Empty(t, params)

	cypher, params = neighborhoodCypher(25)
	assert.Contains(t, cypher, "LIMIT $limit")
	assert.Equal(t, int64(25), params["limit"])
}

func TestStore_FindByPrimaryKey(t *testing.T) {
	ctx := context.Background()
	reader := new(mockReader)
	gene := node("4:g:1", "GENE:1", "Gene")
	reader.On("Read", mock.Anything, "MATCH (n:`Gene` {primaryKey: $primaryKey}) RETURN n", map[string]any{"primaryKey": "GENE:1"}).
		Return([]*neo4j.Record{record("n", gene)}, nil)
	observer := &recordingObserver{}

	nodes, err := newTestStore(reader, observer).FindByPrimaryKey(ctx, "GENE:1", "Gene")

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "4:g:1", nodes[0].ElementID)
	assert.Equal(t, []string{"Gene"}, nodes[0].Labels)
	assert.Equal(t, "GENE:1", nodes[0].StringProp("primaryKey"))
	assert.Equal(t, []recordedOp{{op: "find_by_primary_key"}}, observer.ops)
}

func TestStore_FindByPrimaryKey_RejectsUnsafeLabel(t *testing.T) {
	reader := new(mockReader)

	_, err := newTestStore(reader, nil).FindByPrimaryKey(context.Background(), "GENE:1", "Gene`)--(")

	assert.True(t, pkgerrors.IsValidation(err))
	reader.AssertNotCalled(t, "Read", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_Neighborhood(t *testing.T) {
	ctx := context.Background()
	a, b := node("4:n:A", "A"), node("4:n:B", "B")
	path := dbtype.Path{
		Nodes:         []dbtype.Node{a, b},
		Relationships: []dbtype.Relationship{rel("5:r:1", "RELATED_TO", a, b)},
	}
	reader := new(mockReader)
	reader.On("Read", mock.Anything, cypherNeighborhood+" LIMIT $limit", map[string]any{"primaryKey": "A", "limit": int64(10)}).
		Return([]*neo4j.Record{record("p", path)}, nil)

	paths, err := newTestStore(reader, nil).Neighborhood(ctx, "A", 10)

	require.NoError(t, err)
	require.Len(t, paths, 1)
	start, end, err := paths[0].Endpoints(paths[0].Relationships[0])
	require.NoError(t, err)
	assert.Equal(t, "A", start.StringProp("primaryKey"))
	assert.Equal(t, "B", end.StringProp("primaryKey"))
	assert.Equal(t, "5:r:1-uuid", paths[0].Relationships[0].StringProp("uuid"))
}

func TestStore_GeneToPhenotypeAndSpecies(t *testing.T) {
	ctx := context.Background()
	g, p := node("4:g:1", "GENE:1", "Gene"), node("4:p:1", "ZP:1", "Phenotype")
	reader := new(mockReader)
	reader.On("Read", mock.Anything, cypherGeneToPhenotype, map[string]any{"primaryKey": "GENE:1"}).
		Return([]*neo4j.Record{record("p", dbtype.Path{
			Nodes:         []dbtype.Node{g, p},
			Relationships: []dbtype.Relationship{rel("5:r:9", "HAS_PHENOTYPE", g, p)},
		})}, nil)
	reader.On("Read", mock.Anything, cypherListSpecies, map[string]any(nil)).
		Return([]*neo4j.Record{record("n", node("4:s:1", "NCBITaxon:7955", "Species"))}, nil)
	store := newTestStore(reader, nil)

	paths, err := store.GeneToPhenotype(ctx, "GENE:1")
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	species, err := store.ListSpecies(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NCBITaxon:7955", species[0].StringProp("primaryKey"))
}

func TestStore_UnexpectedRecordShape(t *testing.T) {
	reader := new(mockReader)
	reader.On("Read", mock.Anything, mock.Anything, mock.Anything).
		Return([]*neo4j.Record{record("n", "not a path")}, nil)

	_, err := newTestStore(reader, nil).GeneToPhenotype(context.Background(), "GENE:1")

	assert.Error(t, err)
}

func TestStore_TranslatesReadErrors(t *testing.T) {
	reader := new(mockReader)
	reader.On("Read", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)
	observer := &recordingObserver{}

	_, err := newTestStore(reader, observer).ListSpecies(context.Background())

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeTimeout))
	require.Len(t, observer.ops, 1)
	assert.Error(t, observer.ops[0].err)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError("read", nil))

	appErr := pkgerrors.NewNotFoundError("x")
	assert.Same(t, appErr, translateError("read", appErr))

	canceled := translateError("read", context.Canceled)
	assert.True(t, pkgerrors.IsType(canceled, pkgerrors.ErrorTypeCanceled))
	assert.False(t, pkgerrors.IsUpstream(canceled))
	assert.True(t, pkgerrors.IsType(translateError("read", &neo4j.Neo4jError{Code: "Neo.ClientError.Transaction.TransactionTimedOutClientConfiguration"}), pkgerrors.ErrorTypeTimeout))
	assert.True(t, pkgerrors.IsType(translateError("read", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}), pkgerrors.ErrorTypeExternal))
	assert.True(t, pkgerrors.IsType(translateError("read", errors.New("boom")), pkgerrors.ErrorTypeExternal))
}

func TestStore_CanceledReadsLeaveBreakerClosed(t *testing.T) {
	reader := new(mockReader)
	reader.On("Read", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled).Times(10)
	reader.On("Read", mock.Anything, mock.Anything, mock.Anything).Return([]*neo4j.Record{}, nil)
	breaker := resilience.NewBreaker(resilience.DefaultCircuitBreakerConfig("neo4j"), zap.NewNop())
	store := newStore(reader, breaker, nil, zap.NewNop())

	for i := 0; i < 10; i++ {
		_, err := store.ListSpecies(context.Background())
		require.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeCanceled))
	}

	_, err := store.ListSpecies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "closed", breaker.State().String())
}

func TestStore_PingAndClose(t *testing.T) {
	reader := new(mockReader)
	reader.On("Ping", mock.Anything).Return(context.DeadlineExceeded).Once()
	reader.On("Ping", mock.Anything).Return(nil).Once()
	reader.On("Close", mock.Anything).Return(nil)
	store := newTestStore(reader, nil)

	assert.True(t, pkgerrors.IsUpstream(store.Ping(context.Background())))
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close(context.Background()))
}
