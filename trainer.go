package cmhash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/config"
	"github.com/hupe1980/cmhash/dataset"
	"github.com/hupe1980/cmhash/encoder"
	"github.com/hupe1980/cmhash/eval"
	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/loss"
	"github.com/hupe1980/cmhash/optim"
	"github.com/hupe1980/cmhash/tracking"
)

// Trainer runs the train/validate loop for one S1/S2 encoder pair.
// A Trainer is not safe for concurrent use.
type Trainer struct {
	cfg       config.Config
	s1, s2    encoder.Encoder
	o1, o2    optim.Optimizer
	composer  *loss.Composer
	evaluator *eval.Evaluator
	binarizer *hashcode.Binarizer
	opts      options
	run       string
	logger    *Logger
}

// NewTrainer validates cfg and wires the loss and evaluator it describes.
func NewTrainer(cfg config.Config, s1, s2 encoder.Encoder, o1, o2 optim.Optimizer, optFns ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s1.Bits() != cfg.Bits {
		return nil, &ErrBitsMismatch{Modality: "S1", Expected: cfg.Bits, Actual: s1.Bits()}
	}
	if s2.Bits() != cfg.Bits {
		return nil, &ErrBitsMismatch{Modality: "S2", Expected: cfg.Bits, Actual: s2.Bits()}
	}

	mode, err := cfg.LossMode()
	if err != nil {
		return nil, err
	}
	composer, err := loss.NewComposer(mode, cfg.Bits,
		loss.WithBeta(cfg.Beta),
		loss.WithGamma(cfg.Gamma),
		loss.WithMargin(cfg.Margin),
		loss.WithLegacyProductTerm(cfg.LegacyProductTerm),
	)
	if err != nil {
		return nil, err
	}
	evaluator, err := eval.NewEvaluator(cfg.K, eval.WithWorkers(cfg.EvalWorkers))
	if err != nil {
		return nil, err
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	run := opts.runName
	if run == "" {
		run = cfg.RunName(opts.clock())
	}

	return &Trainer{
		cfg:       cfg,
		s1:        s1,
		s2:        s2,
		o1:        o1,
		o2:        o2,
		composer:  composer,
		evaluator: evaluator,
		binarizer: hashcode.NewBinarizer(cfg.Bits),
		opts:      opts,
		run:       run,
		logger:    opts.logger.WithRun(run),
	}, nil
}

// RunName returns the name artifacts and reports are filed under.
func (t *Trainer) RunName() string { return t.run }

// TrainEpoch runs one pass over loader and returns the sample-weighted
// average loss.
func (t *Trainer) TrainEpoch(ctx context.Context, epoch int, loader dataset.Loader) (float64, error) {
	t.s1.SetTraining(true)
	t.s2.SetTraining(true)

	var meter AverageMeter
	progress := rate.Sometimes{First: 1, Interval: t.cfg.LogInterval}

	it := loader.Iter(epoch)
	for batchIdx := 0; ; batchIdx++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		batch, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, &ErrStep{Epoch: epoch, Batch: batchIdx, cause: err}
		}

		start := time.Now()
		l, err := t.step(batch)
		t.opts.metricsCollector.RecordStep(batch.Len(), time.Since(start), err)
		if err != nil {
			return 0, &ErrStep{Epoch: epoch, Batch: batchIdx, cause: err}
		}

		meter.Update(l, batch.Len())
		progress.Do(func() { t.logger.LogProgress(ctx, epoch, batchIdx, meter.Avg) })
	}

	if meter.Count == 0 {
		return 0, ErrEmptyTraining
	}
	return meter.Avg, nil
}

// step runs forward, loss, backward and both optimizer updates for one batch.
func (t *Trainer) step(batch dataset.Batch) (float64, error) {
	if err := batch.Validate(); err != nil {
		return 0, err
	}

	t.o1.ZeroGrad()
	t.o2.ZeroGrad()

	z1, err := t.s1.Forward(batch.S1)
	if err != nil {
		return 0, fmt.Errorf("S1 forward: %w", err)
	}
	z2, err := t.s2.Forward(batch.S2)
	if err != nil {
		return 0, fmt.Errorf("S2 forward: %w", err)
	}

	res, err := t.composer.Compute(z1, z2, batch.Labels)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(res.Total) || math.IsInf(res.Total, 0) {
		return 0, ErrNonFiniteLoss
	}

	if err := t.s1.Backward(res.GradS1); err != nil {
		return 0, fmt.Errorf("S1 backward: %w", err)
	}
	if err := t.s2.Backward(res.GradS2); err != nil {
		return 0, fmt.Errorf("S2 backward: %w", err)
	}
	if err := t.o1.Step(); err != nil {
		return 0, fmt.Errorf("S1 optimizer: %w", err)
	}
	if err := t.o2.Step(); err != nil {
		return 0, fmt.Errorf("S2 optimizer: %w", err)
	}
	return res.Total, nil
}

// Validate encodes every item of loader in inference mode, binarizes the
// logits and scores leave-one-out retrieval in all four directions.
func (t *Trainer) Validate(ctx context.Context, loader dataset.Loader) (Validation, error) {
	t.s1.SetTraining(false)
	t.s2.SetTraining(false)

	var v Validation
	it := loader.Iter(0)
	for {
		if err := ctx.Err(); err != nil {
			return Validation{}, err
		}

		batch, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Validation{}, err
		}
		if err := batch.Validate(); err != nil {
			return Validation{}, err
		}

		c1, err := t.encode(t.s1, batch.S1)
		if err != nil {
			return Validation{}, fmt.Errorf("S1: %w", err)
		}
		c2, err := t.encode(t.s2, batch.S2)
		if err != nil {
			return Validation{}, fmt.Errorf("S2: %w", err)
		}

		v.S1Codes = append(v.S1Codes, c1...)
		v.S2Codes = append(v.S2Codes, c2...)
		v.Labels = append(v.Labels, batch.Labels...)
		v.S1Names = append(v.S1Names, batch.S1Names...)
		v.S2Names = append(v.S2Names, batch.S2Names...)
	}

	if v.Len() == 0 {
		return Validation{}, ErrEmptyValidation
	}

	scores, err := t.evaluator.Evaluate(ctx, v.S1Codes, v.S2Codes, v.Labels)
	if err != nil {
		return Validation{}, err
	}
	v.Scores = scores
	return v, nil
}

func (t *Trainer) encode(enc encoder.Encoder, x *mat.Dense) ([]hashcode.Code, error) {
	z, err := enc.Forward(x)
	if err != nil {
		return nil, err
	}
	return t.binarizer.EncodeMatrix(z)
}

// Run trains for cfg.Epochs epochs, validating after each one, and returns
// the best state. The best snapshot is persisted at the end only if some
// epoch improved on the previous best.
func (t *Trainer) Run(ctx context.Context, train, val dataset.Loader) (RunState, error) {
	start := t.opts.clock()
	state := NewRunState()

	for epoch := range t.cfg.Epochs {
		trainStart := time.Now()
		trainLoss, err := t.TrainEpoch(ctx, epoch, train)
		if err != nil {
			return state, err
		}
		trainDur := time.Since(trainStart)
		t.opts.metricsCollector.RecordEpoch(epoch, trainLoss, trainDur)

		valStart := time.Now()
		v, err := t.Validate(ctx, val)
		valDur := time.Since(valStart)
		t.opts.metricsCollector.RecordValidation(v.Scores.Queries, valDur, err)
		t.logger.LogValidation(ctx, epoch, t.cfg.K, v.Scores, err)
		if err != nil {
			return state, fmt.Errorf("epoch %d validation: %w", epoch, err)
		}

		isBest := state.Better(v.Scores.AveragePlain)
		if isBest {
			cand, err := t.candidate(epoch, v)
			if err != nil {
				return state, err
			}
			state = state.MaybeUpdate(cand)
		}

		t.logger.LogEpoch(ctx, epoch, trainLoss, v.Scores.AveragePlain, isBest, trainDur+valDur)
		t.record(ctx, tracking.EpochReport{
			Run:           t.run,
			Epoch:         epoch,
			Epochs:        t.cfg.Epochs,
			K:             t.cfg.K,
			TrainLoss:     trainLoss,
			Scores:        v.Scores,
			IsBest:        isBest,
			TrainDuration: trainDur,
			ValDuration:   valDur,
		})
	}

	persisted := false
	if state.Improved && t.opts.snapshotter != nil {
		persistStart := time.Now()
		err := t.opts.snapshotter.Save(ctx, state.Snapshot(t.run, t.cfg.Bits))
		t.opts.metricsCollector.RecordPersist(time.Since(persistStart), err)
		t.logger.LogPersist(ctx, t.run, state.BestEpoch, err)
		if err != nil {
			return state, fmt.Errorf("persist: %w", err)
		}
		persisted = true
	}

	t.finish(ctx, tracking.Summary{
		Run:       t.run,
		BestEpoch: state.BestEpoch,
		BestScore: state.BestScore,
		Epochs:    t.cfg.Epochs,
		Persisted: persisted,
		Elapsed:   t.opts.clock().Sub(start),
	})
	return state, nil
}

// candidate captures the trainable state of the current epoch.
func (t *Trainer) candidate(epoch int, v Validation) (Candidate, error) {
	c := Candidate{Epoch: epoch, Validation: v}
	var err error
	if c.EncoderS1, err = t.s1.MarshalBinary(); err != nil {
		return Candidate{}, fmt.Errorf("marshal S1 encoder: %w", err)
	}
	if c.EncoderS2, err = t.s2.MarshalBinary(); err != nil {
		return Candidate{}, fmt.Errorf("marshal S2 encoder: %w", err)
	}
	if c.OptimizerS1, err = t.o1.MarshalBinary(); err != nil {
		return Candidate{}, fmt.Errorf("marshal S1 optimizer: %w", err)
	}
	if c.OptimizerS2, err = t.o2.MarshalBinary(); err != nil {
		return Candidate{}, fmt.Errorf("marshal S2 optimizer: %w", err)
	}
	return c, nil
}

func (t *Trainer) record(ctx context.Context, r tracking.EpochReport) {
	if t.opts.sink == nil {
		return
	}
	if err := t.opts.sink.Record(ctx, r); err != nil {
		t.logger.LogSinkError(ctx, r.Epoch, err)
	}
}

func (t *Trainer) finish(ctx context.Context, s tracking.Summary) {
	f, ok := t.opts.sink.(tracking.Finisher)
	if !ok {
		return
	}
	if err := f.Finish(ctx, s); err != nil {
		t.logger.LogSinkError(ctx, s.BestEpoch, err)
	}
}
