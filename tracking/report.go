package tracking

import (
	"context"
	"time"

	"github.com/hupe1980/cmhash/eval"
)

// Phases of a scalar, mirroring the training and validation series.
const (
	PhaseTraining   = "training"
	PhaseValidation = "val"
)

// EpochReport summarizes one epoch of a run.
type EpochReport struct {
	Run           string
	Epoch         int
	Epochs        int
	K             int
	TrainLoss     float64
	Scores        eval.Scores
	IsBest        bool
	TrainDuration time.Duration
	ValDuration   time.Duration
}

// Scalar is a single named value of a report.
type Scalar struct {
	Phase string
	Tag   string
	Value float64
}

// Scalars flattens the report into its training and validation scalars.
func (r EpochReport) Scalars() []Scalar {
	out := make([]Scalar, 0, 1+2*len(eval.Directions)+2)
	out = append(out, Scalar{Phase: PhaseTraining, Tag: "loss", Value: r.TrainLoss})
	for _, d := range eval.Directions {
		out = append(out,
			Scalar{Phase: PhaseValidation, Tag: "map_" + d.Tag(), Value: r.Scores.Plain[d]},
			Scalar{Phase: PhaseValidation, Tag: "wmap_" + d.Tag(), Value: r.Scores.Weighted[d]},
		)
	}
	return append(out,
		Scalar{Phase: PhaseValidation, Tag: "map_average", Value: r.Scores.AveragePlain},
		Scalar{Phase: PhaseValidation, Tag: "wmap_average", Value: r.Scores.AverageWeighted},
	)
}

// Summary describes a finished run.
type Summary struct {
	Run       string
	BestEpoch int
	BestScore float64
	Epochs    int
	Persisted bool
	Elapsed   time.Duration
}

// Sink receives epoch reports.
type Sink interface {
	Record(ctx context.Context, r EpochReport) error
}

// Finisher is implemented by sinks that want the run summary.
type Finisher interface {
	Finish(ctx context.Context, s Summary) error
}
