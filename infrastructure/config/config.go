// Package config loads layered service configuration from defaults, YAML or
// JSON files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Environment is the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Instance names which backend serves bioentity requests
type Instance string

const (
	InstanceAlliance Instance = "alliance"
	InstanceSciGraph Instance = "scigraph"
)

// Config is the complete service configuration
type Config struct {
	Environment    Environment    `yaml:"environment" json:"environment"`
	Debug          bool           `yaml:"debug" json:"debug"`
	Instance       Instance       `yaml:"instance" json:"instance"`
	Server         Server         `yaml:"server" json:"server"`
	Neo4j          Neo4j          `yaml:"neo4j" json:"neo4j"`
	SciGraph       SciGraph       `yaml:"scigraph" json:"scigraph"`
	Cache          Cache          `yaml:"cache" json:"cache"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker" json:"circuit_breaker"`
	Metrics        Metrics        `yaml:"metrics" json:"metrics"`
	Tracing        Tracing        `yaml:"tracing" json:"tracing"`
	Logging        Logging        `yaml:"logging" json:"logging"`
	CORS           CORS           `yaml:"cors" json:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// Neo4j holds graph store connection settings
type Neo4j struct {
	URI                          string        `yaml:"uri" json:"uri"`
	Username                     string        `yaml:"username" json:"username"`
	Password                     string        `yaml:"password" json:"password"`
	Database                     string        `yaml:"database" json:"database"`
	QueryTimeout                 time.Duration `yaml:"query_timeout" json:"query_timeout"`
	MaxConnectionPoolSize        int           `yaml:"max_connection_pool_size" json:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `yaml:"connection_acquisition_timeout" json:"connection_acquisition_timeout"`
}

// SciGraph holds settings for the SciGraph backend
type SciGraph struct {
	URL     string        `yaml:"url" json:"url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Cache holds neighborhood cache settings
type Cache struct {
	Provider        string        `yaml:"provider" json:"provider"` // memory | dynamodb
	GraphTTL        time.Duration `yaml:"graph_ttl" json:"graph_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval" json:"janitor_interval"`
	TableName       string        `yaml:"table_name" json:"table_name"`
	KeyPrefix       string        `yaml:"key_prefix" json:"key_prefix"`
	Region          string        `yaml:"region" json:"region"`
	Endpoint        string        `yaml:"endpoint" json:"endpoint"`

	// AdminEnabled mounts DELETE /graph/node/cache. Off unless set.
	AdminEnabled bool `yaml:"admin_enabled" json:"admin_enabled"`
}

// CircuitBreaker holds breaker settings shared by the upstream clients
type CircuitBreaker struct {
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests"`
	Interval         time.Duration `yaml:"interval" json:"interval"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" json:"failure_threshold"`
	MinRequests      uint32        `yaml:"min_requests" json:"min_requests"`
}

// Metrics holds Prometheus settings
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Path      string `yaml:"path" json:"path"`
}

// Tracing holds OpenTelemetry settings
type Tracing struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
}

// Logging holds logger settings
type Logging struct {
	Level string `yaml:"level" json:"level"`
}

// CORS holds cross-origin settings
type CORS struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// Addr returns the listen address
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Validate checks the configuration for required fields and sane values
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Environment))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	switch c.Instance {
	case InstanceAlliance:
		if c.Neo4j.URI == "" {
			errs = append(errs, errors.New("neo4j uri is required for the alliance instance"))
		}
		if c.IsProduction() && c.Neo4j.Password == "" {
			errs = append(errs, errors.New("neo4j password is required in production"))
		}
	case InstanceSciGraph:
		if c.SciGraph.URL == "" {
			errs = append(errs, errors.New("scigraph url is required for the scigraph instance"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown instance %q", c.Instance))
	}

	switch c.Cache.Provider {
	case "memory":
	case "dynamodb":
		if c.Cache.TableName == "" {
			errs = append(errs, errors.New("cache table name is required for the dynamodb provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache provider %q", c.Cache.Provider))
	}

	if c.Cache.GraphTTL <= 0 {
		errs = append(errs, errors.New("cache graph ttl must be positive"))
	}

	if c.CircuitBreaker.FailureThreshold <= 0 || c.CircuitBreaker.FailureThreshold > 1 {
		errs = append(errs, fmt.Errorf("circuit breaker failure threshold %v must be in (0, 1]", c.CircuitBreaker.FailureThreshold))
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing endpoint is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}

// applyEnvironmentDefaults tightens settings that differ per environment
func (c *Config) applyEnvironmentDefaults() {
	switch c.Environment {
	case Production:
		c.Debug = false
		if c.Logging.Level == "debug" {
			c.Logging.Level = "info"
		}
	case Development:
		if c.Logging.Level == "" {
			c.Logging.Level = "debug"
		}
	}
	c.Instance = Instance(strings.ToLower(string(c.Instance)))
}
