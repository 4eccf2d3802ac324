package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/knngraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, knngraph.DefaultNeighbors, cfg.Neighbors)
	assert.Equal(t, "cosine", cfg.Metric)
	assert.Equal(t, "hnsw", cfg.Method)
	assert.Equal(t, knngraph.DefaultDataUse, cfg.DataUse)

	cfg.Input = "x.csv"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knngraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: data.parquet
neighbors: 15
metric: euclidean
method: sw-graph
ef_search: 50
s3:
  region: eu-west-1
`), 0o600))

	t.Run("File", func(t *testing.T) {
		cfg, err := LoadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, "data.parquet", cfg.Input)
		assert.Equal(t, 15, cfg.Neighbors)
		assert.Equal(t, "euclidean", cfg.Metric)
		assert.Equal(t, "sw-graph", cfg.Method)
		assert.Equal(t, 50, cfg.EfSearch)
		assert.Equal(t, "eu-west-1", cfg.S3.Region)
		// Untouched keys keep their defaults.
		assert.Equal(t, knngraph.DefaultEfConstruction, cfg.EfConstruction)
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		t.Setenv("KNNGRAPH_NEIGHBORS", "7")
		t.Setenv("KNNGRAPH_S3_REGION", "us-east-2")

		cfg, err := LoadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Neighbors)
		assert.Equal(t, "us-east-2", cfg.S3.Region)
		assert.Equal(t, "euclidean", cfg.Metric)
	})

	t.Run("DotEnv", func(t *testing.T) {
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("KNNGRAPH_MINIO_ENDPOINT=localhost:9000\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("KNNGRAPH_MINIO_ENDPOINT") })

		cfg, err := LoadConfig("", envFile)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
	})

	t.Run("MissingDotEnv", func(t *testing.T) {
		_, err := LoadConfig("", filepath.Join(dir, "missing.env"))
		assert.NoError(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"), "")
		assert.Error(t, err)
	})

	t.Run("BadEnv", func(t *testing.T) {
		t.Setenv("KNNGRAPH_NEIGHBORS", "many")
		_, err := LoadConfig("", "")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"MissingInput", func(c *Config) { c.Input = "" }, ErrMissingInput},
		{"LogFormat", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"DataUseZero", func(c *Config) { c.DataUse = 0 }, ErrInvalidDataUse},
		{"DataUseTooLarge", func(c *Config) { c.DataUse = 1.5 }, ErrInvalidDataUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Input = "x.csv"
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}

	cfg := DefaultConfig()
	cfg.Input = "x.csv"
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
}

func TestParseLocation(t *testing.T) {
	loc, err := parseLocation("s3://bucket/dir/points.parquet")
	require.NoError(t, err)
	assert.Equal(t, location{scheme: "s3", bucket: "bucket", name: "dir/points.parquet"}, loc)

	loc, err = parseLocation("minio://data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, location{scheme: "minio", bucket: "data", name: "a.csv"}, loc)

	loc, err = parseLocation(filepath.Join("some", "dir", "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "file", loc.scheme)
	assert.Equal(t, "a.csv", loc.name)
	assert.True(t, filepath.IsAbs(loc.bucket))

	_, err = parseLocation("s3://bucket")
	assert.Error(t, err)

	_, err = parseLocation("gs://bucket/key")
	assert.Error(t, err)
}
