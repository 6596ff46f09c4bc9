package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestLoader(dir string, env Environment, vars map[string]string) *Loader {
	l := NewLoader(dir, env)
	l.getenv = func(key string) string { return vars[key] }
	return l
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), Development, nil).Load()

	require.NoError(t, err)
	assert.Equal(t, InstanceAlliance, cfg.Instance)
	assert.Equal(t, 48*time.Hour, cfg.Cache.GraphTTL)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.False(t, cfg.Cache.AdminEnabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoader_Layering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: 9000
neo4j:
  uri: bolt://base:7687
  database: alliance
cache:
  graph_ttl: 24h
`)
	writeFile(t, dir, "staging.yaml", `
neo4j:
  uri: bolt://staging:7687
`)
	writeFile(t, dir, "local.yaml", `
server:
  port: 1234
`)

	cfg, err := newTestLoader(dir, Staging, map[string]string{
		"NEO4J_PASSWORD": "secret",
		"SERVER_HOST":    "127.0.0.1",
	}).Load()

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port, "local.yaml only applies in development")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "bolt://staging:7687", cfg.Neo4j.URI)
	assert.Equal(t, "alliance", cfg.Neo4j.Database)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.Equal(t, 24*time.Hour, cfg.Cache.GraphTTL)
	assert.Equal(t, []string{"defaults", filepath.Join(dir, "base.yaml"), filepath.Join(dir, "staging.yaml"), "environment"}, cfg.LoadedFrom)
}

func TestLoader_EnvironmentVariables(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), Development, map[string]string{
		"BIOLINK_INSTANCE":     "SciGraph",
		"SCIGRAPH_URL":         "http://scigraph:9000/scigraph/",
		"GRAPH_CACHE_TTL":      "90m",
		"ENABLE_METRICS":       "false",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"SERVER_PORT":          "8181",
		"CACHE_ADMIN_ENABLED":  "true",
	}).Load()

	require.NoError(t, err)
	assert.Equal(t, InstanceSciGraph, cfg.Instance)
	assert.Equal(t, 90*time.Minute, cfg.Cache.GraphTTL)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.True(t, cfg.Cache.AdminEnabled)
}

func TestLoader_BadInputs(t *testing.T) {
	t.Run("malformed env var", func(t *testing.T) {
		_, err := newTestLoader(t.TempDir(), Development, map[string]string{"SERVER_PORT": "eighty"}).Load()
		assert.ErrorContains(t, err, "SERVER_PORT")
	})

	t.Run("unknown yaml field", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "servr:\n  port: 1\n")
		_, err := newTestLoader(dir, Development, nil).Load()
		assert.ErrorContains(t, err, "base.yaml")
	})

	t.Run("empty yaml is fine", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "")
		_, err := newTestLoader(dir, Development, nil).Load()
		assert.NoError(t, err)
	})

	t.Run("json file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.json", `{"server": {"port": 7070}}`)
		cfg, err := newTestLoader(dir, Development, nil).Load()
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := newTestLoader(t.TempDir(), Development, nil).Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown instance", func(c *Config) { c.Instance = "golr" }, "unknown instance"},
		{"alliance without uri", func(c *Config) { c.Neo4j.URI = "" }, "neo4j uri"},
		{"scigraph without url", func(c *Config) { c.Instance = InstanceSciGraph; c.SciGraph.URL = "" }, "scigraph url"},
		{"dynamodb without table", func(c *Config) { c.Cache.Provider = "dynamodb"; c.Cache.TableName = "" }, "table name"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"zero ttl", func(c *Config) { c.Cache.GraphTTL = 0 }, "ttl"},
		{"production without password", func(c *Config) { c.Environment = Production }, "password"},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Endpoint = "" }, "tracing endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("PROD"))
	assert.Equal(t, Staging, ParseEnvironment("staging"))
	assert.Equal(t, Development, ParseEnvironment(""))
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "logging:\n  level: info\n")
	loader := newTestLoader(dir, Development, nil)
	initial, err := loader.Load()
	require.NoError(t, err)

	w, err := newConfigWatcher(loader, initial, zap.NewNop(), 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *Config, 1)
	w.OnChange(func(c *Config) { changed <- c })

	writeFile(t, dir, "base.yaml", "logging:\n  level: warn\n")

	select {
	case cfg := <-changed:
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "warn", w.GetConfig().Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}
}

func TestConfigWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	loader := newTestLoader(dir, Development, nil)
	initial, err := loader.Load()
	require.NoError(t, err)
	w, err := NewConfigWatcher(loader, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	writeFile(t, dir, "base.yaml", "instance: golr\n")
	w.reload()

	assert.Same(t, initial, w.GetConfig())
}

func TestConfigWatcher_DisabledOutsideDevelopment(t *testing.T) {
	loader := newTestLoader(t.TempDir(), Staging, nil)
	initial, err := loader.Load()
	require.NoError(t, err)

	w, err := NewConfigWatcher(loader, initial, zap.NewNop())

	require.NoError(t, err)
	assert.Nil(t, w.watcher)
	w.Stop()
	w.Stop()
}
