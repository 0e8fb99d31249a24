package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/cmhash/dataset"
	"github.com/hupe1980/cmhash/loss"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 16, cfg.Bits)
	assert.Equal(t, 20, cfg.K)
	assert.Equal(t, 500, cfg.Epochs)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.Equal(t, 8, cfg.LoaderWorkers)
	assert.InDelta(t, 1e-3, cfg.LearningRate, 0)
	assert.InDelta(t, 0.001, cfg.Beta, 0)
	assert.InDelta(t, 1, cfg.Gamma, 0)
	assert.InDelta(t, 0.2, cfg.Margin, 0)

	mode, err := cfg.LossMode()
	require.NoError(t, err)
	assert.Equal(t, loss.ModeSimilarity, mode)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bits: 32
loss: TripletLoss
log_interval: 1m
dataset:
  stats: serbia
  s2:
    mean: [1, 2]
    std: [3, 4]
storage:
  backend: minio
  bucket: runs
  endpoint: localhost:9000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 32, cfg.Bits)
	assert.Equal(t, 20, cfg.K, "unset keys keep defaults")
	assert.Equal(t, LossTriplet, cfg.Loss)
	assert.Equal(t, time.Minute, cfg.LogInterval)
	assert.Equal(t, StorageMinio, cfg.Storage.Backend)

	s1, s2, err := cfg.Stats()
	require.NoError(t, err)
	assert.Equal(t, dataset.SerbiaS1, s1)
	assert.Equal(t, []float64{1, 2}, s2.Mean)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CMHASH_BITS":                "64",
		"CMHASH_LEARNING_RATE":       "0.01",
		"CMHASH_LEGACY_PRODUCT_TERM": "true",
		"CMHASH_SEED":                "7",
		"CMHASH_LOG_INTERVAL":        "2s",
		"CMHASH_STORAGE_SECRET_KEY":  "secret",
		"CMHASH_K":                   "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 64, cfg.Bits)
	assert.Equal(t, 20, cfg.K, "empty values are ignored")
	assert.InDelta(t, 0.01, cfg.LearningRate, 0)
	assert.True(t, cfg.LegacyProductTerm)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 2*time.Second, cfg.LogInterval)
	assert.Equal(t, "secret", cfg.Storage.SecretKey)

	env["CMHASH_EPOCHS"] = "many"
	err := cfg.ApplyEnv(lookup)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "CMHASH_EPOCHS")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CMHASH_TEST_DOTENV_BITS=48\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("CMHASH_TEST_DOTENV_BITS") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "48", os.Getenv("CMHASH_TEST_DOTENV_BITS"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero bits", func(c *Config) { c.Bits = 0 }},
		{"zero k", func(c *Config) { c.K = 0 }},
		{"batch of one", func(c *Config) { c.BatchSize = 1 }},
		{"unknown loss", func(c *Config) { c.Loss = "HingeLoss" }},
		{"unknown stats", func(c *Config) { c.Dataset.Stats = "mars" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = StorageS3 }},
		{"minio without endpoint", func(c *Config) { c.Storage.Backend = StorageMinio; c.Storage.Bucket = "b" }},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "ftp" }},
		{"dynamodb without table", func(c *Config) { c.Series.Backend = SeriesDynamoDB }},
		{"unknown compression", func(c *Config) { c.Storage.Compression = "brotli" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestRunName(t *testing.T) {
	cfg := Default()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "20260304_050607_16_20_MSELoss", cfg.RunName(now))
}

func TestDump(t *testing.T) {
	cfg := Default()
	cfg.Storage.SecretKey = "do-not-print"

	var buf bytes.Buffer
	require.NoError(t, cfg.Dump(&buf))
	assert.NotContains(t, buf.String(), "do-not-print")
	assert.Contains(t, buf.String(), "batch_size: 200")

	var back Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, cfg.Bits, back.Bits)
	assert.Equal(t, cfg.LogInterval, back.LogInterval)
}
