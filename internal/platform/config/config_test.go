package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, DefaultGenerations, cfg.DefaultGenerations)
	assert.Equal(t, MaxGenerations, cfg.MaxGenerations)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DSN", "postgres://localhost/pedigree")
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("DEFAULT_GENERATIONS", "6")
	t.Setenv("GENOTYPE_API_URL", "https://lab.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://localhost/pedigree", cfg.DBDSN)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 6, cfg.DefaultGenerations)
	assert.Equal(t, "https://lab.example.com", cfg.GenotypeAPIURL)
}

func TestLoad_RejectsDefaultAboveMax(t *testing.T) {
	t.Setenv("DEFAULT_GENERATIONS", "12")
	t.Setenv("MAX_GENERATIONS", "8")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsMaxAboveCeiling(t *testing.T) {
	t.Setenv("MAX_GENERATIONS", "30")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_GENERATIONS")
}

func TestLoad_AcceptsMaxAtCeiling(t *testing.T) {
	t.Setenv("MAX_GENERATIONS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, GenerationsCeiling, cfg.MaxGenerations)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nlog:\n  level: debug\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}
