package dataset

import (
	"fmt"
	"math/rand"

	"github.com/hupe1980/cmhash/labels"
)

// SyntheticConfig describes a generated paired dataset.
type SyntheticConfig struct {
	// Classes is the label dimension.
	Classes int
	// MaxActive bounds the number of positive classes per sample.
	MaxActive int
	// S1Dim and S2Dim are the feature widths.
	S1Dim int
	S2Dim int
	// Noise is the standard deviation added to every feature.
	Noise float64
}

// DefaultSyntheticConfig mirrors the BigEarthNet label set at a small feature width.
var DefaultSyntheticConfig = SyntheticConfig{
	Classes:   19,
	MaxActive: 3,
	S1Dim:     16,
	S2Dim:     48,
	Noise:     0.3,
}

// Synthetic generates n paired samples whose features are the sum of a
// per-class prototype (one per modality) plus Gaussian noise, so samples that
// share classes are close in both feature spaces.
func Synthetic(rng *rand.Rand, n int, cfg SyntheticConfig) ([]Sample, error) {
	if cfg.Classes <= 0 || cfg.MaxActive <= 0 || cfg.MaxActive > cfg.Classes || cfg.S1Dim <= 0 || cfg.S2Dim <= 0 {
		return nil, fmt.Errorf("dataset: invalid synthetic config %+v", cfg)
	}

	proto := func(dim int) [][]float64 {
		p := make([][]float64, cfg.Classes)
		for c := range p {
			p[c] = make([]float64, dim)
			for j := range p[c] {
				p[c][j] = rng.NormFloat64()
			}
		}
		return p
	}
	p1, p2 := proto(cfg.S1Dim), proto(cfg.S2Dim)

	out := make([]Sample, n)
	for i := range out {
		active := 1 + rng.Intn(cfg.MaxActive)
		perm := rng.Perm(cfg.Classes)[:active]
		classes := make([]uint32, active)
		for j, c := range perm {
			classes[j] = uint32(c)
		}
		ls, err := labels.New(cfg.Classes, classes...)
		if err != nil {
			return nil, err
		}

		s1 := make([]float64, cfg.S1Dim)
		s2 := make([]float64, cfg.S2Dim)
		for _, c := range perm {
			for j := range s1 {
				s1[j] += p1[c][j]
			}
			for j := range s2 {
				s2[j] += p2[c][j]
			}
		}
		for j := range s1 {
			s1[j] += cfg.Noise * rng.NormFloat64()
		}
		for j := range s2 {
			s2[j] += cfg.Noise * rng.NormFloat64()
		}

		out[i] = Sample{
			S1:     s1,
			S2:     s2,
			Label:  ls,
			S1Name: fmt.Sprintf("S1_synthetic_%06d", i),
			S2Name: fmt.Sprintf("S2_synthetic_%06d", i),
		}
	}
	return out, nil
}
