package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/cmhash"
	"github.com/hupe1980/cmhash/blobstore"
	miniostore "github.com/hupe1980/cmhash/blobstore/minio"
	s3store "github.com/hupe1980/cmhash/blobstore/s3"
	"github.com/hupe1980/cmhash/config"
	"github.com/hupe1980/cmhash/dataset"
	"github.com/hupe1980/cmhash/persistence"
	"github.com/hupe1980/cmhash/tracking"
	"github.com/hupe1980/cmhash/tracking/dynamo"
	"github.com/hupe1980/cmhash/tracking/sqlite"
)

// loadConfig layers the YAML file, .env files, CMHASH_* variables and the
// global flags, in that order.
func loadConfig(g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.LoadDotEnv(g.envFiles...); err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*cmhash.Logger, error) {
	level, err := cmhash.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return cmhash.NewJSONLogger(os.Stderr, level), nil
	}
	return cmhash.NewTextLogger(os.Stderr, level), nil
}

// openStore returns the blob store selected by cfg.Storage.
func openStore(ctx context.Context, cfg config.Config) (blobstore.BlobStore, error) {
	s := cfg.Storage
	switch s.Backend {
	case config.StorageLocal:
		return blobstore.NewLocalStore(filepath.Join(cfg.OutputDir, s.Prefix)), nil
	case config.StorageS3:
		return s3store.New(ctx, s.Bucket, s.Prefix, s.Region)
	case config.StorageMinio:
		client, err := minio.New(s.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
			Secure: s.UseSSL,
			Region: s.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, s.Bucket, s.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

func newSnapshotter(ctx context.Context, cfg config.Config) (*persistence.Snapshotter, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	comp, err := persistence.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		return nil, err
	}
	return persistence.NewSnapshotter(store, func(o *persistence.SnapshotterOptions) {
		o.Compression = comp
	}), nil
}

// openSeries returns the scalar series sink selected by cfg.Series, or nil.
// The returned close func is never nil.
func openSeries(ctx context.Context, cfg config.Config) (tracking.Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Series.Backend {
	case config.SeriesNone, "":
		return nil, noop, nil
	case config.SeriesSQLite:
		path := cfg.Series.Path
		if path == "" {
			path = filepath.Join(cfg.OutputDir, "logs", "series.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, noop, err
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.SeriesDynamoDB:
		s, err := dynamo.New(ctx, cfg.Series.Table, cfg.Series.Region)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown series backend %q", cfg.Series.Backend)
	}
}

func readSamples(path string) ([]dataset.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := dataset.ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// createFile creates path and its parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
