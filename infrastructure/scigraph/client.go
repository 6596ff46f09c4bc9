package scigraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"biolink-gateway/domain/core/aggregates"
	"biolink-gateway/domain/core/entities"
	"biolink-gateway/domain/core/valueobjects"
	"biolink-gateway/infrastructure/resilience"
	pkgerrors "biolink-gateway/pkg/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	serviceName    = "scigraph"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
)

// Config holds SciGraph connection settings
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client reads entities and neighborhoods from a SciGraph server
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
	logger     *zap.Logger
}

// NewClient creates a new SciGraph client
func NewClient(cfg Config, breaker *resilience.Breaker, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger,
	}
}

// GetEntity returns the node whose id matches. SciGraph identifiers are
// global, so the entity type only fills in a missing category.
func (c *Client) GetEntity(ctx context.Context, id string, entityType valueobjects.EntityType) (*entities.Entity, error) {
	var graph bbopGraph
	if err := c.getJSON(ctx, "/graph/"+url.PathEscape(id)+".json", nil, &graph); err != nil {
		return nil, err
	}

	for _, node := range graph.Nodes {
		if node.ID != id {
			continue
		}
		category := first(node.Meta.Category)
		if category == "" {
			category = entityType.String()
		}
		entity := &entities.Entity{
			ID:          node.ID,
			Label:       node.Label,
			Categories:  []string{},
			Description: first(node.Meta.Definition),
		}
		if category != "" {
			entity.Categories = append(entity.Categories, category)
		}
		return entity, nil
	}

	return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("entity '%s'", id))
}

// GetNodeGraph returns the one-hop neighborhood of id. A positive limit
// keeps the first limit edges and the nodes they reference.
func (c *Client) GetNodeGraph(ctx context.Context, id string, limit int) (*aggregates.GraphSnapshot, error) {
	query := url.Values{
		"depth":      {"1"},
		"blankNodes": {"false"},
		"direction":  {"BOTH"},
	}

	var graph bbopGraph
	if err := c.getJSON(ctx, "/graph/neighbors/"+url.PathEscape(id), query, &graph); err != nil {
		return nil, err
	}

	return toSnapshot(graph, limit), nil
}

// Ping checks that the server answers
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return pkgerrors.NewInternalError("failed to build request").WithCause(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return translateError(err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.NewExternalError(serviceName, fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

func toSnapshot(graph bbopGraph, limit int) *aggregates.GraphSnapshot {
	edges := graph.Edges
	if limit > 0 && len(edges) > limit {
		edges = edges[:limit]
	}

	var referenced map[string]bool
	if limit > 0 {
		referenced = make(map[string]bool, len(edges)*2)
		for _, e := range edges {
			referenced[e.Subject] = true
			referenced[e.Object] = true
		}
	}

	snapshot := aggregates.NewGraphSnapshot()
	for _, n := range graph.Nodes {
		if referenced != nil && !referenced[n.ID] {
			continue
		}
		snapshot.AddNode(n.ID, aggregates.SnapshotNode{ID: n.ID, Label: n.Label})
	}
	for _, e := range edges {
		snapshot.AddEdge(aggregates.SnapshotEdge{Subject: e.Subject, Predicate: e.Predicate, Object: e.Object})
	}
	return snapshot
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to build request").WithCause(err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, translateError(err)
		}
		defer resp.Body.Close()

		c.logger.Debug("SciGraph request",
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)

		if err := checkStatus(resp, path); err != nil {
			return nil, err
		}

		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
			if ctx.Err() != nil {
				return nil, translateError(ctx.Err())
			}
			return nil, pkgerrors.NewExternalError(serviceName, fmt.Errorf("decode response: %w", err))
		}
		return nil, nil
	})
	return err
}

func checkStatus(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.NewNotFoundError(fmt.Sprintf("scigraph resource '%s'", path))
	case resp.StatusCode == http.StatusGatewayTimeout:
		return pkgerrors.NewTimeoutError(serviceName + " " + path)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return pkgerrors.NewExternalError(serviceName, fmt.Errorf("status %s: %s", strconv.Itoa(resp.StatusCode), strings.TrimSpace(string(body))))
	}
}

func translateError(err error) error {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.Canceled):
		return pkgerrors.NewCanceledError(serviceName + " request").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return pkgerrors.NewTimeoutError(serviceName + " request").WithCause(err)
	default:
		return pkgerrors.NewUnavailableError(serviceName).WithCause(err)
	}
}
