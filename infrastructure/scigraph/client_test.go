package scigraph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"biolink-gateway/domain/core/aggregates"
	"biolink-gateway/domain/core/entities"
	"biolink-gateway/domain/core/valueobjects"
	"biolink-gateway/infrastructure/resilience"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const entityDoc = `{
  "nodes": [
    {"id": "HP:0000001", "lbl": "All", "meta": {"category": ["phenotype"], "definition": ["Root of all terms"]}},
    {"id": "HP:0000118", "lbl": "Phenotypic abnormality", "meta": {}}
  ],
  "edges": []
}`

const neighborsDoc = `{
  "nodes": [
    {"id": "HP:0000118", "lbl": "Phenotypic abnormality"},
    {"id": "HP:0000001", "lbl": "All"},
    {"id": "HP:0000707", "lbl": "Abnormality of the nervous system"},
    {"id": "HP:0000001", "lbl": "All"}
  ],
  "edges": [
    {"sub": "HP:0000118", "pred": "subClassOf", "obj": "HP:0000001"},
    {"sub": "HP:0000707", "pred": "subClassOf", "obj": "HP:0000118"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := resilience.DefaultCircuitBreakerConfig(serviceName)
	cfg.MinRequests = 2
	cfg.FailureThreshold = 1
	return NewClient(Config{URL: server.URL + "/", Timeout: time.Second}, resilience.NewBreaker(cfg, zap.NewNop()), zap.NewNop())
}

func TestClient_GetEntity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graph/HP:0000001.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(entityDoc))
	})

	entity, err := client.GetEntity(context.Background(), "HP:0000001", "")

	require.NoError(t, err)
	assert.Equal(t, &entities.Entity{
		ID:          "HP:0000001",
		Label:       "All",
		Categories:  []string{"phenotype"},
		Description: "Root of all terms",
	}, entity)
}

func TestClient_GetEntity_CategoryFromType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(entityDoc))
	})

	entity, err := client.GetEntity(context.Background(), "HP:0000118", valueobjects.EntityTypePhenotype)

	require.NoError(t, err)
	assert.Equal(t, []string{"phenotype"}, entity.Categories)
	assert.Empty(t, entity.Description)
}

func TestClient_GetEntity_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/graph/NOPE:1.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"nodes":[],"edges":[]}`))
	})

	_, err := client.GetEntity(context.Background(), "NOPE:1", "")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = client.GetEntity(context.Background(), "EMPTY:1", "")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestClient_GetNodeGraph(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graph/neighbors/HP:0000118", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("depth"))
		assert.Equal(t, "false", r.URL.Query().Get("blankNodes"))
		assert.Equal(t, "BOTH", r.URL.Query().Get("direction"))
		_, _ = w.Write([]byte(neighborsDoc))
	})

	graph, err := client.GetNodeGraph(context.Background(), "HP:0000118", 0)

	require.NoError(t, err)
	assert.Equal(t, 3, graph.NodeCount())
	assert.Equal(t, 2, graph.EdgeCount())
}

func TestClient_GetNodeGraph_Limit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(neighborsDoc))
	})

	graph, err := client.GetNodeGraph(context.Background(), "HP:0000118", 1)

	require.NoError(t, err)
	assert.Equal(t, []aggregates.SnapshotEdge{{Subject: "HP:0000118", Predicate: "subClassOf", Object: "HP:0000001"}}, graph.Edges)
	assert.ElementsMatch(t, []aggregates.SnapshotNode{
		{ID: "HP:0000118", Label: "Phenotypic abnormality"},
		{ID: "HP:0000001", Label: "All"},
	}, graph.Nodes)
}

func TestClient_UpstreamFailuresTripBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	ctx := context.Background()

	_, err := client.GetNodeGraph(ctx, "HP:1", 0)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	assert.Contains(t, err.Error(), "boom")
	_, _ = client.GetNodeGraph(ctx, "HP:1", 0)

	_, err = client.GetNodeGraph(ctx, "HP:1", 0)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_CanceledRequestsLeaveBreakerClosed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(neighborsDoc))
	})
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		_, err := client.GetNodeGraph(canceled, "HP:0000118", 0)
		require.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeCanceled))
		assert.False(t, pkgerrors.IsUpstream(err))
	}

	graph, err := client.GetNodeGraph(context.Background(), "HP:0000118", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, graph.Nodes)
}

func TestClient_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := client.GetNodeGraph(context.Background(), "HP:1", 0)

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(Config{URL: server.URL}, resilience.NewBreaker(resilience.DefaultCircuitBreakerConfig(serviceName), zap.NewNop()), zap.NewNop())

	_, err := client.GetNodeGraph(context.Background(), "HP:1", 0)

	assert.True(t, pkgerrors.IsUpstream(err))
	assert.True(t, pkgerrors.IsUpstream(client.Ping(context.Background())))
}
