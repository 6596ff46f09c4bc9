package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
	fileLoaders []FileLoader
	getenv      func(string) string
}

// FileLoader decodes one configuration file format
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// NewLoader creates a new configuration loader
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}

	return &Loader{
		basePath:    basePath,
		environment: env,
		fileLoaders: []FileLoader{&YAMLLoader{}, &JSONLoader{}},
		getenv:      os.Getenv,
	}
}

// Load loads configuration using a hierarchy of sources.
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. Base configuration file (base.yaml)
//  3. Environment-specific file (e.g., production.yaml)
//  4. Local overrides file (local.yaml, development only)
//  5. Environment variables
func (l *Loader) Load() (*Config, error) {
	l.sources = nil

	cfg := l.defaultConfig()
	l.sources = append(l.sources, "defaults")

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}

	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	l.sources = append(l.sources, "environment")

	cfg.LoadedFrom = l.sources
	cfg.applyEnvironmentDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// BasePath returns the directory configuration files are read from
func (l *Loader) BasePath() string {
	return l.basePath
}

// loadFile loads the first file named name with a supported extension
func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())

		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}

	return fs.ErrNotExist
}

// loadEnvironmentVariables overlays environment variables on the configuration
func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	var errs []error
	str := func(key string, target *string) {
		if val := l.getenv(key); val != "" {
			*target = val
		}
	}
	integer := func(key string, target *int) {
		if val := l.getenv(key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*target = n
		}
	}
	boolean := func(key string, target *bool) {
		if val := l.getenv(key); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*target = b
		}
	}
	duration := func(key string, target *time.Duration) {
		if val := l.getenv(key); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*target = d
		}
	}

	boolean("DEBUG", &cfg.Debug)
	if val := l.getenv("BIOLINK_INSTANCE"); val != "" {
		cfg.Instance = Instance(val)
	}

	str("SERVER_HOST", &cfg.Server.Host)
	integer("SERVER_PORT", &cfg.Server.Port)

	str("NEO4J_URI", &cfg.Neo4j.URI)
	str("NEO4J_USERNAME", &cfg.Neo4j.Username)
	str("NEO4J_PASSWORD", &cfg.Neo4j.Password)
	str("NEO4J_DATABASE", &cfg.Neo4j.Database)
	duration("NEO4J_QUERY_TIMEOUT", &cfg.Neo4j.QueryTimeout)

	str("SCIGRAPH_URL", &cfg.SciGraph.URL)
	duration("SCIGRAPH_TIMEOUT", &cfg.SciGraph.Timeout)

	str("CACHE_PROVIDER", &cfg.Cache.Provider)
	duration("GRAPH_CACHE_TTL", &cfg.Cache.GraphTTL)
	str("CACHE_TABLE_NAME", &cfg.Cache.TableName)
	str("AWS_REGION", &cfg.Cache.Region)
	str("DYNAMODB_ENDPOINT", &cfg.Cache.Endpoint)
	boolean("CACHE_ADMIN_ENABLED", &cfg.Cache.AdminEnabled)

	boolean("ENABLE_METRICS", &cfg.Metrics.Enabled)
	boolean("ENABLE_TRACING", &cfg.Tracing.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)

	str("LOG_LEVEL", &cfg.Logging.Level)
	if val := l.getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.CORS.AllowedOrigins = splitList(val)
	}

	return errors.Join(errs...)
}

// defaultConfig returns a configuration that runs against a local Neo4j
func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		Instance:    InstanceAlliance,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Neo4j: Neo4j{
			URI:                          "bolt://localhost:7687",
			Username:                     "neo4j",
			Database:                     "neo4j",
			QueryTimeout:                 30 * time.Second,
			MaxConnectionPoolSize:        50,
			ConnectionAcquisitionTimeout: 10 * time.Second,
		},
		SciGraph: SciGraph{
			URL:     "https://scigraph-data.monarchinitiative.org/scigraph/",
			Timeout: 30 * time.Second,
		},
		Cache: Cache{
			Provider:        "memory",
			GraphTTL:        48 * time.Hour,
			JanitorInterval: 10 * time.Minute,
			TableName:       "biolink-cache-" + strings.ToLower(string(l.environment)),
			KeyPrefix:       "GRAPH#",
			Region:          "us-east-1",
		},
		CircuitBreaker: CircuitBreaker{
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "biolink",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "biolink-gateway",
			Endpoint:    "localhost:4317",
		},
		Logging: Logging{
			Level: "info",
		},
		CORS: CORS{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		},
	}
}

// YAMLLoader loads YAML configuration files
type YAMLLoader struct{}

// Load decodes YAML into target
func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Extension returns the file extension
func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader loads JSON configuration files
type JSONLoader struct{}

// Load decodes JSON into target
func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// Extension returns the file extension
func (j *JSONLoader) Extension() string {
	return "json"
}

// ParseEnvironment maps a raw name onto an Environment, defaulting to
// development.
func ParseEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

// LoadFromEnvironment loads configuration for the environment named by
// ENVIRONMENT from the directory named by CONFIG_DIR.
func LoadFromEnvironment() (*Config, *Loader, error) {
	loader := NewLoader(os.Getenv("CONFIG_DIR"), ParseEnvironment(os.Getenv("ENVIRONMENT")))
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
