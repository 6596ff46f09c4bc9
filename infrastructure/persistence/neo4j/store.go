package neo4j

import (
	"context"
	"fmt"
	"time"

	"biolink-gateway/application/ports"
	"biolink-gateway/infrastructure/resilience"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds Neo4j connection configuration
type Config struct {
	URI                          string
	Username                     string
	Password                     string
	Database                     string
	QueryTimeout                 time.Duration
	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
}

// OperationObserver records the outcome of each store operation
type OperationObserver interface {
	ObserveDBOperation(operation string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveDBOperation(string, time.Duration, error) {}

// recordReader runs read-only Cypher and returns every record
type recordReader interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewDriver creates a driver and verifies the server is reachable
func NewDriver(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
			if cfg.ConnectionAcquisitionTimeout > 0 {
				c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, translateError("connect", err)
	}

	return driver, nil
}

// Store implements ports.GraphStore on top of Neo4j
type Store struct {
	reader   recordReader
	breaker  *resilience.Breaker
	observer OperationObserver
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewStore creates a store reading through driver
func NewStore(driver neo4j.DriverWithContext, cfg Config, breaker *resilience.Breaker, observer OperationObserver, logger *zap.Logger) *Store {
	return newStore(&driverReader{
		driver:   driver,
		database: cfg.Database,
		timeout:  cfg.QueryTimeout,
	}, breaker, observer, logger)
}

func newStore(reader recordReader, breaker *resilience.Breaker, observer OperationObserver, logger *zap.Logger) *Store {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Store{
		reader:   reader,
		breaker:  breaker,
		observer: observer,
		tracer:   otel.Tracer("biolink-gateway/neo4j"),
		logger:   logger,
	}
}

// FindByPrimaryKey returns every node whose primaryKey equals primaryKey,
// restricted to label when it is non-empty.
func (s *Store) FindByPrimaryKey(ctx context.Context, primaryKey, label string) ([]ports.StoreNode, error) {
	cypher, err := findByPrimaryKeyCypher(label)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	records, err := s.read(ctx, "find_by_primary_key", cypher, map[string]any{"primaryKey": primaryKey},
		attribute.String("node.primary_key", primaryKey),
		attribute.String("node.label", label),
	)
	if err != nil {
		return nil, err
	}
	return nodesFromRecords(records, keyNode)
}

// ListSpecies returns every Species node
func (s *Store) ListSpecies(ctx context.Context) ([]ports.StoreNode, error) {
	records, err := s.read(ctx, "list_species", cypherListSpecies, nil)
	if err != nil {
		return nil, err
	}
	return nodesFromRecords(records, keyNode)
}

// Neighborhood returns every one-hop path touching the node, at most limit
// of them when limit is positive.
func (s *Store) Neighborhood(ctx context.Context, primaryKey string, limit int) ([]ports.StorePath, error) {
	cypher, params := neighborhoodCypher(limit)
	params["primaryKey"] = primaryKey

	records, err := s.read(ctx, "neighborhood", cypher, params,
		attribute.String("node.primary_key", primaryKey),
		attribute.Int("query.limit", limit),
	)
	if err != nil {
		return nil, err
	}
	return pathsFromRecords(records, keyPath)
}

// GeneToPhenotype returns every Gene to Phenotype path from the gene
func (s *Store) GeneToPhenotype(ctx context.Context, primaryKey string) ([]ports.StorePath, error) {
	records, err := s.read(ctx, "gene_to_phenotype", cypherGeneToPhenotype, map[string]any{"primaryKey": primaryKey},
		attribute.String("node.primary_key", primaryKey),
	)
	if err != nil {
		return nil, err
	}
	return pathsFromRecords(records, keyPath)
}

// Ping checks connectivity
func (s *Store) Ping(ctx context.Context) error {
	return translateError("ping", s.reader.Ping(ctx))
}

// Close releases the driver
func (s *Store) Close(ctx context.Context) error {
	return s.reader.Close(ctx)
}

func (s *Store) read(ctx context.Context, op, cypher string, params map[string]any, attrs ...attribute.KeyValue) ([]*neo4j.Record, error) {
	ctx, span := s.tracer.Start(ctx, "neo4j."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("db.system", "neo4j"))...),
	)
	defer span.End()

	start := time.Now()
	result, err := s.breaker.Execute(func() (interface{}, error) {
		records, err := s.reader.Read(ctx, cypher, params)
		if err != nil {
			return nil, translateError(op, err)
		}
		return records, nil
	})
	s.observer.ObserveDBOperation(op, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("Neo4j read failed",
			zap.String("operation", op),
			zap.Any("params", params),
			zap.Error(err),
		)
		return nil, err
	}

	records := result.([]*neo4j.Record)
	span.SetAttributes(attribute.Int("db.records", len(records)))
	return records, nil
}

type driverReader struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
}

func (r *driverReader) Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	var configurers []func(*neo4j.TransactionConfig)
	if r.timeout > 0 {
		configurers = append(configurers, neo4j.WithTxTimeout(r.timeout))
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	}, configurers...)
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

func (r *driverReader) Ping(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

func (r *driverReader) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}
