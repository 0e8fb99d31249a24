package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/labels"
)

// Sample is one geographic patch seen by both sensors.
type Sample struct {
	S1     []float64
	S2     []float64
	Label  labels.Set
	S1Name string
	S2Name string
}

// Batch is a set of samples with one row per sample in each modality.
type Batch struct {
	S1      *mat.Dense
	S2      *mat.Dense
	Labels  []labels.Set
	S1Names []string
	S2Names []string
}

// Len returns the number of rows.
func (b Batch) Len() int { return len(b.Labels) }

// Validate checks that every part of the batch has the same number of rows.
func (b Batch) Validate() error {
	n := len(b.Labels)
	if b.S1 == nil || b.S2 == nil {
		return fmt.Errorf("dataset: batch without features")
	}
	if r, _ := b.S1.Dims(); r != n {
		return fmt.Errorf("dataset: %d S1 rows for %d labels", r, n)
	}
	if r, _ := b.S2.Dims(); r != n {
		return fmt.Errorf("dataset: %d S2 rows for %d labels", r, n)
	}
	if len(b.S1Names) != n || len(b.S2Names) != n {
		return fmt.Errorf("dataset: %d S1 names and %d S2 names for %d labels", len(b.S1Names), len(b.S2Names), n)
	}
	if _, err := labels.Dim(b.Labels); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	return nil
}

// NewBatch stacks samples into a batch. All samples must share feature widths.
func NewBatch(samples []Sample) (Batch, error) {
	if len(samples) == 0 {
		return Batch{}, fmt.Errorf("dataset: empty batch")
	}
	d1, d2 := len(samples[0].S1), len(samples[0].S2)
	if d1 == 0 || d2 == 0 {
		return Batch{}, fmt.Errorf("dataset: sample %q has empty features", samples[0].S2Name)
	}

	n := len(samples)
	b := Batch{
		S1:      mat.NewDense(n, d1, nil),
		S2:      mat.NewDense(n, d2, nil),
		Labels:  make([]labels.Set, n),
		S1Names: make([]string, n),
		S2Names: make([]string, n),
	}
	for i, s := range samples {
		if len(s.S1) != d1 || len(s.S2) != d2 {
			return Batch{}, fmt.Errorf("dataset: sample %d has widths %d/%d, expected %d/%d", i, len(s.S1), len(s.S2), d1, d2)
		}
		b.S1.SetRow(i, s.S1)
		b.S2.SetRow(i, s.S2)
		b.Labels[i] = s.Label
		b.S1Names[i] = s.S1Name
		b.S2Names[i] = s.S2Name
	}
	return b, b.Validate()
}
