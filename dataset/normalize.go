package dataset

import (
	"fmt"
)

// Stats holds per-band mean and standard deviation.
type Stats struct {
	Mean []float64 `yaml:"mean" json:"mean"`
	Std  []float64 `yaml:"std" json:"std"`
}

// Bands returns the number of bands.
func (s Stats) Bands() int { return len(s.Mean) }

// Validate checks that mean and std line up and std is non-zero.
func (s Stats) Validate() error {
	if len(s.Mean) == 0 {
		return fmt.Errorf("dataset: stats without bands")
	}
	if len(s.Mean) != len(s.Std) {
		return fmt.Errorf("dataset: %d means for %d standard deviations", len(s.Mean), len(s.Std))
	}
	for i, sd := range s.Std {
		if sd == 0 {
			return fmt.Errorf("dataset: band %d has zero standard deviation", i)
		}
	}
	return nil
}

// apply normalizes a band-major feature vector: the first len(v)/bands values
// belong to band 0, the next to band 1, and so on.
func (s Stats) apply(v []float64) ([]float64, error) {
	bands := s.Bands()
	if len(v)%bands != 0 {
		return nil, fmt.Errorf("dataset: %d values do not split into %d bands", len(v), bands)
	}
	per := len(v) / bands
	out := make([]float64, len(v))
	for i, x := range v {
		b := i / per
		out[i] = (x - s.Mean[b]) / s.Std[b]
	}
	return out, nil
}

// Normalizer standardizes S1 and S2 features per band.
type Normalizer struct {
	S1 Stats
	S2 Stats
}

// NewNormalizer validates both stats.
func NewNormalizer(s1, s2 Stats) (*Normalizer, error) {
	if err := s1.Validate(); err != nil {
		return nil, fmt.Errorf("S1 %w", err)
	}
	if err := s2.Validate(); err != nil {
		return nil, fmt.Errorf("S2 %w", err)
	}
	return &Normalizer{S1: s1, S2: s2}, nil
}

// Transform returns a normalized copy of s. It satisfies Transform.
func (n *Normalizer) Transform(s Sample) (Sample, error) {
	s1, err := n.S1.apply(s.S1)
	if err != nil {
		return Sample{}, fmt.Errorf("S1: %w", err)
	}
	s2, err := n.S2.apply(s.S2)
	if err != nil {
		return Sample{}, fmt.Errorf("S2: %w", err)
	}
	s.S1, s.S2 = s1, s2
	return s, nil
}
