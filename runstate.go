package cmhash

import (
	"github.com/hupe1980/cmhash/eval"
	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
	"github.com/hupe1980/cmhash/persistence"
)

// Validation is the outcome of one validation pass: the binarized codes,
// labels and names of every item plus their retrieval scores.
type Validation struct {
	Scores  eval.Scores
	S1Codes []hashcode.Code
	S2Codes []hashcode.Code
	Labels  []labels.Set
	S1Names []string
	S2Names []string
}

// Len returns the number of validation items.
func (v Validation) Len() int { return len(v.Labels) }

// Candidate is the state of one finished epoch, offered to RunState.MaybeUpdate.
type Candidate struct {
	Epoch       int
	EncoderS1   []byte
	EncoderS2   []byte
	OptimizerS1 []byte
	OptimizerS2 []byte
	Validation  Validation
}

// Score returns the plain average mAP used for model selection.
func (c Candidate) Score() float64 { return c.Validation.Scores.AveragePlain }

// RunState holds the best epoch seen so far.
//
// RunState is a value: MaybeUpdate returns a new state and never modifies
// its receiver. Improved reports whether any epoch was ever accepted.
type RunState struct {
	BestScore   float64
	BestEpoch   int
	EncoderS1   []byte
	EncoderS2   []byte
	OptimizerS1 []byte
	OptimizerS2 []byte
	Validation  Validation
	Improved    bool
}

// NewRunState returns the state before the first epoch.
func NewRunState() RunState {
	return RunState{BestEpoch: -1}
}

// Better reports whether score strictly exceeds the best so far.
func (s RunState) Better(score float64) bool {
	return score > s.BestScore
}

// MaybeUpdate returns the state after offering c: c wholesale if its score
// is strictly better, otherwise s unchanged.
func (s RunState) MaybeUpdate(c Candidate) RunState {
	if !s.Better(c.Score()) {
		return s
	}
	return RunState{
		BestScore:   c.Score(),
		BestEpoch:   c.Epoch,
		EncoderS1:   c.EncoderS1,
		EncoderS2:   c.EncoderS2,
		OptimizerS1: c.OptimizerS1,
		OptimizerS2: c.OptimizerS2,
		Validation:  c.Validation,
		Improved:    true,
	}
}

// Snapshot converts the best epoch into its persisted form.
func (s RunState) Snapshot(run string, bits int) persistence.Snapshot {
	return persistence.Snapshot{
		Checkpoint: persistence.Checkpoint{
			Run:         run,
			Epoch:       s.BestEpoch,
			BestScore:   s.BestScore,
			Bits:        bits,
			EncoderS1:   s.EncoderS1,
			EncoderS2:   s.EncoderS2,
			OptimizerS1: s.OptimizerS1,
			OptimizerS2: s.OptimizerS2,
		},
		S1Codes: s.Validation.S1Codes,
		S2Codes: s.Validation.S2Codes,
		Labels:  s.Validation.Labels,
		S1Names: s.Validation.S1Names,
		S2Names: s.Validation.S2Names,
	}
}
