// Package distance provides the distance kernels used by training and retrieval.
// Float kernels are backed by gonum/floats; Hamming works on packed words.
package distance

import (
	"math"
	"math/bits"

	"gonum.org/v1/gonum/floats"
)

// CosineEps clamps vector norms in Cosine, matching the usual deep learning
// convention so that a zero vector yields a similarity of 0 instead of NaN.
const CosineEps = 1e-8

// PairwiseEps is added to the difference in Euclidean.
const PairwiseEps = 1e-6

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// Cosine calculates a·b / (max(|a|,eps) · max(|b|,eps)).
func Cosine(a, b []float64) float64 {
	na := math.Max(Norm(a), CosineEps)
	nb := math.Max(Norm(b), CosineEps)
	return Dot(a, b) / (na * nb)
}

// Euclidean calculates ‖a − b + eps‖₂ with eps = PairwiseEps.
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i] + PairwiseEps
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Hamming returns the number of differing bits between two packed bit vectors.
// Assumes slices are the same length.
func Hamming(a, b []uint64) int {
	var dist int
	for i := range a {
		dist += bits.OnesCount64(a[i] ^ b[i])
	}
	return dist
}

// OnesCount returns the number of set bits of a packed bit vector.
func OnesCount(a []uint64) int {
	var n int
	for _, w := range a {
		n += bits.OnesCount64(w)
	}
	return n
}
