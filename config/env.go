package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CMHASH_"

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

type envVar struct {
	name string
	set  func(c *Config, v string) error
}

func intVar(p func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p(c) = n
		return nil
	}
}

func floatVar(p func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*p(c) = f
		return nil
	}
}

func boolVar(p func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p(c) = b
		return nil
	}
}

func stringVar(p func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*p(c) = v
		return nil
	}
}

var envVars = []envVar{
	{"BITS", intVar(func(c *Config) *int { return &c.Bits })},
	{"K", intVar(func(c *Config) *int { return &c.K })},
	{"LOSS", stringVar(func(c *Config) *string { return &c.Loss })},
	{"EPOCHS", intVar(func(c *Config) *int { return &c.Epochs })},
	{"BATCH_SIZE", intVar(func(c *Config) *int { return &c.BatchSize })},
	{"LEARNING_RATE", floatVar(func(c *Config) *float64 { return &c.LearningRate })},
	{"WEIGHT_DECAY", floatVar(func(c *Config) *float64 { return &c.WeightDecay })},
	{"LEGACY_PRODUCT_TERM", boolVar(func(c *Config) *bool { return &c.LegacyProductTerm })},
	{"SEED", func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = n
		return nil
	}},
	{"NUM_WORKERS", intVar(func(c *Config) *int { return &c.LoaderWorkers })},
	{"EVAL_WORKERS", intVar(func(c *Config) *int { return &c.EvalWorkers })},
	{"LOG_INTERVAL", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.LogInterval = d
		return nil
	}},
	{"OUTPUT_DIR", stringVar(func(c *Config) *string { return &c.OutputDir })},
	{"STATS", stringVar(func(c *Config) *string { return &c.Dataset.Stats })},
	{"STORAGE_BACKEND", stringVar(func(c *Config) *string { return &c.Storage.Backend })},
	{"STORAGE_BUCKET", stringVar(func(c *Config) *string { return &c.Storage.Bucket })},
	{"STORAGE_PREFIX", stringVar(func(c *Config) *string { return &c.Storage.Prefix })},
	{"STORAGE_ENDPOINT", stringVar(func(c *Config) *string { return &c.Storage.Endpoint })},
	{"STORAGE_REGION", stringVar(func(c *Config) *string { return &c.Storage.Region })},
	{"STORAGE_ACCESS_KEY", stringVar(func(c *Config) *string { return &c.Storage.AccessKey })},
	{"STORAGE_SECRET_KEY", stringVar(func(c *Config) *string { return &c.Storage.SecretKey })},
	{"STORAGE_USE_SSL", boolVar(func(c *Config) *bool { return &c.Storage.UseSSL })},
	{"SERIES_BACKEND", stringVar(func(c *Config) *string { return &c.Series.Backend })},
	{"SERIES_PATH", stringVar(func(c *Config) *string { return &c.Series.Path })},
	{"SERIES_TABLE", stringVar(func(c *Config) *string { return &c.Series.Table })},
	{"METRICS_ADDR", stringVar(func(c *Config) *string { return &c.Metrics.Addr })},
	{"LOG_FORMAT", stringVar(func(c *Config) *string { return &c.Log.Format })},
	{"LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Log.Level })},
}

// ApplyEnv overrides c with CMHASH_* variables found by lookup
// (os.LookupEnv when nil).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, ev := range envVars {
		name := EnvPrefix + ev.name
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, name, v, err)
		}
	}
	return nil
}
