package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biolink-gateway/application/ports"
	querybus "biolink-gateway/application/queries/bus"
	"biolink-gateway/application/queries/handlers"
	"biolink-gateway/application/services"
	"biolink-gateway/domain/core/entities"
	"biolink-gateway/infrastructure/cache"
	"biolink-gateway/infrastructure/config"
	"biolink-gateway/infrastructure/observability"
	"biolink-gateway/infrastructure/persistence/dynamodb"
	neo4jstore "biolink-gateway/infrastructure/persistence/neo4j"
	"biolink-gateway/infrastructure/resilience"
	"biolink-gateway/infrastructure/scigraph"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Pinger reports whether the configured backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Invalidator drops every cached neighborhood
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Backend is the provider set serving one configured instance
type Backend struct {
	Instance  config.Instance
	Providers handlers.Providers
	Graphs    Invalidator
	Health    Pinger

	// Taxa is nil when the instance resolves taxa itself
	Taxa ports.TaxonSource

	close func(ctx context.Context) error
}

// Warm loads the taxon map ahead of the first request
func (b *Backend) Warm(ctx context.Context) error {
	if b.Taxa == nil {
		return nil
	}
	_, err := b.Taxa.Load(ctx)
	return err
}

// Close releases the backend's connections
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// ProvideLogLevel creates the runtime-adjustable log level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if cfg.Logging.Level == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return level, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("instance", string(cfg.Instance))), nil
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// tracerShutdownTimeout bounds the span flush when initialization is unwound.
const tracerShutdownTimeout = 5 * time.Second

// ProvideTracer starts trace export when tracing is enabled. The returned
// provider is nil otherwise. The cleanup flushes and stops the exporter so a
// failure further down the injector does not leak it.
func ProvideTracer(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, cfg.Tracing.ServiceName, string(cfg.Environment), cfg.Tracing.Endpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}
	return tp, cleanup, nil
}

// ProvideBreaker creates the circuit breaker guarding the configured upstream
func ProvideBreaker(cfg *config.Config, logger *zap.Logger) *resilience.Breaker {
	bc := resilience.DefaultCircuitBreakerConfig(string(cfg.Instance))
	cb := cfg.CircuitBreaker
	if cb.MaxRequests > 0 {
		bc.MaxRequests = cb.MaxRequests
	}
	if cb.Interval > 0 {
		bc.Interval = cb.Interval
	}
	if cb.Timeout > 0 {
		bc.Timeout = cb.Timeout
	}
	if cb.FailureThreshold > 0 {
		bc.FailureThreshold = cb.FailureThreshold
	}
	if cb.MinRequests > 0 {
		bc.MinRequests = cb.MinRequests
	}
	return resilience.NewBreaker(bc, logger)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Cache.Region),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client, honouring a local endpoint
// override
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.Cache.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Cache.Endpoint)
		}
	})
}

// ProvideCache creates the neighborhood cache selected by configuration. The
// in-memory cache runs a janitor until the returned cleanup is called.
func ProvideCache(ctx context.Context, cfg *config.Config, collector *observability.Collector, logger *zap.Logger) (ports.Cache, func(), error) {
	switch cfg.Cache.Provider {
	case "dynamodb":
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("loading aws config: %w", err)
		}
		client := ProvideDynamoDBClient(awsCfg, cfg)
		var skips dynamodb.SkipObserver
		if collector != nil {
			skips = collector
		}
		logger.Info("Using DynamoDB snapshot cache", zap.String("table", cfg.Cache.TableName))
		return dynamodb.NewSnapshotCache(client, cfg.Cache.TableName, cfg.Cache.KeyPrefix, ports.SystemClock{}, skips, logger), func() {}, nil

	case "", "memory":
		memory := cache.NewInMemoryCache(ports.SystemClock{})
		janitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		if cfg.Cache.JanitorInterval > 0 {
			go memory.RunJanitor(janitorCtx, cfg.Cache.JanitorInterval)
		}
		return memory, cancel, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache provider %q", cfg.Cache.Provider)
	}
}

// ProvideBackend wires the services for the configured instance
func ProvideBackend(
	ctx context.Context,
	cfg *config.Config,
	graphCache ports.Cache,
	breaker *resilience.Breaker,
	collector *observability.Collector,
	logger *zap.Logger,
) (*Backend, error) {
	switch cfg.Instance {
	case config.InstanceAlliance:
		return provideAllianceBackend(ctx, cfg, graphCache, breaker, collector, logger)
	case config.InstanceSciGraph:
		return provideSciGraphBackend(cfg, graphCache, breaker, collector, logger), nil
	default:
		return nil, fmt.Errorf("unknown instance %q", cfg.Instance)
	}
}

func provideAllianceBackend(
	ctx context.Context,
	cfg *config.Config,
	graphCache ports.Cache,
	breaker *resilience.Breaker,
	collector *observability.Collector,
	logger *zap.Logger,
) (*Backend, error) {
	storeCfg := neo4jstore.Config{
		URI:                          cfg.Neo4j.URI,
		Username:                     cfg.Neo4j.Username,
		Password:                     cfg.Neo4j.Password,
		Database:                     cfg.Neo4j.Database,
		QueryTimeout:                 cfg.Neo4j.QueryTimeout,
		MaxConnectionPoolSize:        cfg.Neo4j.MaxConnectionPoolSize,
		ConnectionAcquisitionTimeout: cfg.Neo4j.ConnectionAcquisitionTimeout,
	}

	driver, err := neo4jstore.NewDriver(ctx, storeCfg)
	if err != nil {
		return nil, err
	}
	store := neo4jstore.NewStore(driver, storeCfg, breaker, collector, logger)

	taxa := services.NewTaxonMapLoader(store, logger)
	flattener := services.NewNeighborhoodFlattener(store, graphCache, cfg.Cache.GraphTTL, collector, logger)

	return &Backend{
		Instance: config.InstanceAlliance,
		Providers: handlers.Providers{
			Entities:   services.NewEntityResolver(store, taxa, logger),
			Graphs:     flattener,
			Phenotypes: services.NewPhenotypeWalker(store, taxa, logger),
		},
		Graphs: flattener,
		Health: store,
		Taxa:   taxa,
		close:  store.Close,
	}, nil
}

func provideSciGraphBackend(
	cfg *config.Config,
	graphCache ports.Cache,
	breaker *resilience.Breaker,
	collector *observability.Collector,
	logger *zap.Logger,
) *Backend {
	client := scigraph.NewClient(scigraph.Config{
		URL:     cfg.SciGraph.URL,
		Timeout: cfg.SciGraph.Timeout,
	}, breaker, logger)
	graphs := services.NewCachedNeighborhood(client, graphCache, cfg.Cache.GraphTTL, collector, logger)

	return &Backend{
		Instance: config.InstanceSciGraph,
		Providers: handlers.Providers{
			Entities:   client,
			Graphs:     graphs,
			Phenotypes: phenotypesUnavailable{},
		},
		Graphs: graphs,
		Health: client,
	}
}

// phenotypesUnavailable serves instances without phenotype associations
type phenotypesUnavailable struct{}

func (phenotypesUnavailable) GetGeneToPhenotype(context.Context, string) (*entities.AssociationResults, error) {
	return nil, pkgerrors.NewUnavailableError("gene phenotype associations")
}

// ProvideQueryBus creates the query bus and registers every handler
func ProvideQueryBus(backend *Backend, collector *observability.Collector, logger *zap.Logger) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus(
		querybus.NewLoggingMiddleware(logger),
		querybus.NewMetricsMiddleware(collector),
	)
	if err := handlers.RegisterAll(b, backend.Providers, logger); err != nil {
		return nil, err
	}
	return b, nil
}

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Metrics  *observability.Collector
	Tracer   *observability.TracerProvider
	Cache    ports.Cache
	Backend  *Backend
	QueryBus *querybus.QueryBus
}

// Close shuts down the backend and tracer and flushes the logger
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Backend != nil {
		if err := c.Backend.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing backend: %w", err))
		}
	}
	if err := c.Tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down tracer: %w", err))
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return errors.Join(errs...)
}

// ApplyConfig updates the runtime-adjustable settings after a reload
func (c *Container) ApplyConfig(cfg *config.Config) {
	if cfg.Logging.Level == "" {
		return
	}
	if err := c.LogLevel.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		c.Logger.Warn("Ignoring invalid log level", zap.String("level", cfg.Logging.Level), zap.Error(err))
		return
	}
	c.Logger.Info("Log level updated", zap.String("level", c.LogLevel.String()))
}
