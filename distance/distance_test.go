package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 32},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Mixed", []float64{1, -1, 2}, []float64{1, 1, -2}, -4},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-12)
		})
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"Opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"Orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"ZeroVector", []float64{0, 0}, []float64{1, 1}, 0},
		{"BothZero", []float64{0, 0}, []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, 5.0, Euclidean([]float64{3, 4}, []float64{0, 0}), 1e-5)
	assert.InDelta(t, math.Sqrt(2)*PairwiseEps, Euclidean([]float64{1, 1}, []float64{1, 1}), 1e-12)
}

func TestHamming(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []uint64
		expected int
	}{
		{"Identical", []uint64{0xAA}, []uint64{0xAA}, 0},
		{"Single", []uint64{1}, []uint64{0}, 1},
		{"FullWord", []uint64{math.MaxUint64}, []uint64{0}, 64},
		{"TwoWords", []uint64{0, 0xF}, []uint64{1, 0}, 5},
		{"Empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hamming(tt.a, tt.b))
			assert.Equal(t, tt.expected, Hamming(tt.b, tt.a))
		})
	}
}
