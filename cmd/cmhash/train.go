package main

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cmhash"
	"github.com/hupe1980/cmhash/config"
	"github.com/hupe1980/cmhash/dataset"
	"github.com/hupe1980/cmhash/encoder"
	"github.com/hupe1980/cmhash/optim"
	"github.com/hupe1980/cmhash/tracking"
	"github.com/hupe1980/cmhash/tracking/prom"
)

var _ cmhash.MetricsCollector = (*prom.Collector)(nil)

type trainFlags struct {
	run          string
	train        string
	val          string
	bits         int
	k            int
	loss         string
	epochs       int
	batchSize    int
	lr           float64
	outputDir    string
	metricsAddr  string
	legacyTerm   bool
	noNormalize  bool
	storage      string
	series       string
}

func newTrainCmd(g *globalFlags) *cobra.Command {
	f := &trainFlags{}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train S1 and S2 hashing encoders and persist the best epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			return runTrain(cmd, cfg, f.run)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.run, "run", "", "Run name (default: generated from time and settings)")
	fl.StringVar(&f.train, "train", "", "Training JSONL file")
	fl.StringVar(&f.val, "val", "", "Validation JSONL file")
	fl.IntVar(&f.bits, "bits", 0, "Hash code length")
	fl.IntVar(&f.k, "k", 0, "Retrieval depth for mAP@k")
	fl.StringVar(&f.loss, "loss", "", "Loss: MSELoss or TripletLoss")
	fl.IntVar(&f.epochs, "epochs", 0, "Number of epochs")
	fl.IntVar(&f.batchSize, "batch-size", 0, "Batch size")
	fl.Float64Var(&f.lr, "lr", 0, "Learning rate")
	fl.StringVar(&f.outputDir, "output-dir", "", "Directory for results, logs and local artifacts")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fl.BoolVar(&f.legacyTerm, "legacy-product-term", false, "Multiply the two inter-modal terms of the similarity loss")
	fl.BoolVar(&f.noNormalize, "no-normalize", false, "Disable per-band normalization")
	fl.StringVar(&f.storage, "storage", "", "Artifact storage: local, s3 or minio")
	fl.StringVar(&f.series, "series", "", "Scalar series: none, sqlite or dynamodb")

	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (f *trainFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("train") {
		cfg.Dataset.Train = f.train
	}
	if changed("val") {
		cfg.Dataset.Val = f.val
	}
	if changed("bits") {
		cfg.Bits = f.bits
	}
	if changed("k") {
		cfg.K = f.k
	}
	if changed("loss") {
		cfg.Loss = f.loss
	}
	if changed("epochs") {
		cfg.Epochs = f.epochs
	}
	if changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if changed("lr") {
		cfg.LearningRate = f.lr
	}
	if changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if changed("legacy-product-term") {
		cfg.LegacyProductTerm = f.legacyTerm
	}
	if changed("no-normalize") {
		cfg.Dataset.Normalize = !f.noNormalize
	}
	if changed("storage") {
		cfg.Storage.Backend = f.storage
	}
	if changed("series") {
		cfg.Series.Backend = f.series
	}
}

func runTrain(cmd *cobra.Command, cfg config.Config, run string) error {
	ctx := cmd.Context()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Dataset.Train == "" || cfg.Dataset.Val == "" {
		return fmt.Errorf("%w: dataset.train and dataset.val are required", config.ErrInvalidConfig)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if run == "" {
		run = cfg.RunName(time.Now())
	}

	trainSamples, err := readSamples(cfg.Dataset.Train)
	if err != nil {
		return err
	}
	valSamples, err := readSamples(cfg.Dataset.Val)
	if err != nil {
		return err
	}
	if len(trainSamples) == 0 {
		return cmhash.ErrEmptyTraining
	}

	var loaderOpts []dataset.LoaderOption
	if cfg.Dataset.Normalize {
		s1, s2, err := cfg.Stats()
		if err != nil {
			return err
		}
		n, err := dataset.NewNormalizer(s1, s2)
		if err != nil {
			return err
		}
		loaderOpts = append(loaderOpts, dataset.WithTransform(n.Transform), dataset.WithWorkers(cfg.LoaderWorkers))
	}
	trainLoader, err := dataset.NewSliceLoader(trainSamples, cfg.BatchSize, append(loaderOpts, dataset.WithShuffle(cfg.Seed))...)
	if err != nil {
		return err
	}
	valLoader, err := dataset.NewSliceLoader(valSamples, cfg.BatchSize, loaderOpts...)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s1, err := encoder.NewLinear(len(trainSamples[0].S1), cfg.Bits, rng)
	if err != nil {
		return err
	}
	s2, err := encoder.NewLinear(len(trainSamples[0].S2), cfg.Bits, rng)
	if err != nil {
		return err
	}
	adam := func(o *optim.AdamOptions) {
		o.LearningRate = cfg.LearningRate
		o.WeightDecay = cfg.WeightDecay
	}
	o1, err := optim.NewAdam(s1.Params(), adam)
	if err != nil {
		return err
	}
	o2, err := optim.NewAdam(s2.Params(), adam)
	if err != nil {
		return err
	}

	snapshotter, err := newSnapshotter(ctx, cfg)
	if err != nil {
		return err
	}

	args, err := createFile(filepath.Join(cfg.OutputDir, "logs", run+"_arguments.yaml"))
	if err != nil {
		return err
	}
	err = cfg.Dump(args)
	if cerr := args.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing arguments: %w", err)
	}

	results, err := createFile(filepath.Join(cfg.OutputDir, "results", run+"_results.txt"))
	if err != nil {
		return err
	}
	defer results.Close()

	sinks := tracking.NewMulti(tracking.NewResultsLog(results))

	series, closeSeries, err := openSeries(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSeries(); err != nil {
			logger.Warn("closing series failed", "error", err)
		}
	}()
	if series != nil {
		sinks.Add(series)
	}

	opts := []cmhash.Option{
		cmhash.WithLogger(logger),
		cmhash.WithRunName(run),
		cmhash.WithSnapshotter(snapshotter),
		cmhash.WithSink(sinks),
	}
	if cfg.Metrics.Addr != "" {
		collector := prom.NewCollector(nil)
		sinks.Add(collector)
		opts = append(opts, cmhash.WithMetricsCollector(collector))
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	trainer, err := cmhash.NewTrainer(cfg, s1, s2, o1, o2, opts...)
	if err != nil {
		return err
	}

	logger.Info("training started",
		"run", run,
		"train", len(trainSamples),
		"val", len(valSamples),
		"bits", cfg.Bits,
		"loss", cfg.Loss,
	)

	state, err := trainer.Run(ctx, trainLoader, valLoader)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !state.Improved {
		fmt.Fprintf(out, "run %s: no epoch improved on mAP 0, nothing persisted\n", run)
		return nil
	}
	fmt.Fprintf(out, "run %s: best epoch %d, average mAP@%d %.6f\n", run, state.BestEpoch, cfg.K, state.BestScore)
	tracking.WriteScores(out, state.Validation.Scores, cfg.K)
	return nil
}
