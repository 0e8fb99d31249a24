// Package distance provides vector distance calculations.
//
// # Kernels
//
//   - Hamming: popcount of XOR over bit-packed hash codes
//   - Cosine: cosine similarity with norm clamping (zero vectors give 0)
//   - Euclidean: pairwise L2 distance with a small additive epsilon
//
// # Usage
//
//	d := distance.Hamming(a.Words(), b.Words())
//	sim := distance.Cosine(x, y)
package distance
