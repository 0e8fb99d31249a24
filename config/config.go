// Package config holds the explicit run configuration of a training run.
//
// Values are resolved in this order, later sources winning:
//
//  1. Default()
//  2. a YAML file (Load)
//  3. .env files and CMHASH_* environment variables (ApplyEnv)
//  4. command-line flags (bound by the CLI)
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/cmhash/dataset"
	"github.com/hupe1980/cmhash/loss"
	"github.com/hupe1980/cmhash/persistence"
)

// ErrInvalidConfig is returned by Validate for inconsistent settings.
var ErrInvalidConfig = errors.New("invalid config")

// Loss function names, as accepted on the command line.
const (
	LossSimilarity = "MSELoss"
	LossTriplet    = "TripletLoss"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Series backends.
const (
	SeriesNone     = "none"
	SeriesSQLite   = "sqlite"
	SeriesDynamoDB = "dynamodb"
)

// Config is the full configuration of a run.
type Config struct {
	Bits              int           `yaml:"bits"`
	K                 int           `yaml:"k"`
	Loss              string        `yaml:"loss"`
	Epochs            int           `yaml:"epochs"`
	BatchSize         int           `yaml:"batch_size"`
	LearningRate      float64       `yaml:"learning_rate"`
	WeightDecay       float64       `yaml:"weight_decay"`
	Beta              float64       `yaml:"beta"`
	Gamma             float64       `yaml:"gamma"`
	Margin            float64       `yaml:"margin"`
	LegacyProductTerm bool          `yaml:"legacy_product_term"`
	Seed              int64         `yaml:"seed"`
	EvalWorkers       int           `yaml:"eval_workers"`
	LoaderWorkers     int           `yaml:"num_workers"`
	LogInterval       time.Duration `yaml:"log_interval"`
	OutputDir         string        `yaml:"output_dir"`

	Dataset DatasetConfig `yaml:"dataset"`
	Storage StorageConfig `yaml:"storage"`
	Series  SeriesConfig  `yaml:"series"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// DatasetConfig locates the paired JSONL datasets and their band statistics.
type DatasetConfig struct {
	Train string `yaml:"train"`
	Val   string `yaml:"val"`
	// Stats names a statistics preset ("bigearthnet" or "serbia").
	Stats string `yaml:"stats"`
	// S1 and S2 override the preset when set.
	S1 *dataset.Stats `yaml:"s1,omitempty"`
	S2 *dataset.Stats `yaml:"s2,omitempty"`
	// Normalize enables per-band standardization of the inputs.
	Normalize bool `yaml:"normalize"`
}

// StorageConfig selects where run artifacts are persisted.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	Bucket      string `yaml:"bucket,omitempty"`
	Prefix      string `yaml:"prefix,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Region      string `yaml:"region,omitempty"`
	AccessKey   string `yaml:"-"`
	SecretKey   string `yaml:"-"`
	UseSSL      bool   `yaml:"use_ssl"`
	Compression string `yaml:"compression"`
}

// SeriesConfig selects where scalar series are recorded.
type SeriesConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
	Table   string `yaml:"table,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Bits:          16,
		K:             20,
		Loss:          LossSimilarity,
		Epochs:        500,
		BatchSize:     200,
		LearningRate:  1e-3,
		WeightDecay:   1e-4,
		Beta:          loss.DefaultBeta,
		Gamma:         loss.DefaultGamma,
		Margin:        loss.DefaultMargin,
		Seed:          42,
		EvalWorkers:   8,
		LoaderWorkers: 8,
		LogInterval:   10 * time.Second,
		OutputDir:     ".",
		Dataset: DatasetConfig{
			Stats:     "bigearthnet",
			Normalize: true,
		},
		Storage: StorageConfig{
			Backend:     StorageLocal,
			UseSSL:      true,
			Compression: "lz4",
		},
		Series: SeriesConfig{
			Backend: SeriesNone,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load reads a YAML file over the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Dump writes the configuration as YAML.
func (c Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// LossMode returns the loss mode selected by Loss.
func (c Config) LossMode() (loss.Mode, error) {
	return loss.ParseMode(c.Loss)
}

// Stats resolves the S1 and S2 band statistics.
func (c Config) Stats() (s1, s2 dataset.Stats, err error) {
	s1, s2, err = dataset.Preset(c.Dataset.Stats)
	if err != nil {
		return dataset.Stats{}, dataset.Stats{}, err
	}
	if c.Dataset.S1 != nil {
		s1 = *c.Dataset.S1
	}
	if c.Dataset.S2 != nil {
		s2 = *c.Dataset.S2
	}
	return s1, s2, nil
}

// RunName returns the run identifier YYYYMMDD_HHMMSS_<bits>_<k>_<loss>.
func (c Config) RunName(now time.Time) string {
	return fmt.Sprintf("%s_%d_%d_%s", now.Format("20060102_150405"), c.Bits, c.K, c.Loss)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Bits > 0, "bits must be positive, got %d", c.Bits)
	check(c.K > 0, "k must be positive, got %d", c.K)
	check(c.Epochs > 0, "epochs must be positive, got %d", c.Epochs)
	check(c.BatchSize >= 2, "batch_size must be at least 2, got %d", c.BatchSize)
	check(c.LearningRate > 0, "learning_rate must be positive, got %g", c.LearningRate)
	check(c.WeightDecay >= 0, "weight_decay must not be negative, got %g", c.WeightDecay)
	check(c.Margin >= 0, "margin must not be negative, got %g", c.Margin)
	check(c.EvalWorkers > 0, "eval_workers must be positive, got %d", c.EvalWorkers)
	check(c.LoaderWorkers > 0, "num_workers must be positive, got %d", c.LoaderWorkers)

	if _, err := c.LossMode(); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.Stats(); err != nil {
		errs = append(errs, err)
	}
	if _, err := persistence.ParseCompression(c.Storage.Compression); err != nil {
		errs = append(errs, err)
	}

	switch c.Storage.Backend {
	case StorageLocal:
	case StorageS3, StorageMinio:
		check(c.Storage.Bucket != "", "storage.bucket is required for backend %s", c.Storage.Backend)
		check(c.Storage.Backend != StorageMinio || c.Storage.Endpoint != "", "storage.endpoint is required for backend minio")
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Series.Backend {
	case SeriesNone, "", SeriesSQLite:
	case SeriesDynamoDB:
		check(c.Series.Table != "", "series.table is required for backend dynamodb")
	default:
		errs = append(errs, fmt.Errorf("unknown series backend %q", c.Series.Backend))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
