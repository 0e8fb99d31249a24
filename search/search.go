// Package search ranks a database of binary codes by Hamming distance to a query.
package search

import (
	"github.com/hupe1980/cmhash/hashcode"
)

// Neighbor is one entry of a ranking.
type Neighbor struct {
	// Index is the position of the entry in the searched database.
	Index int
	// Distance is the Hamming distance to the query.
	Distance int
}

// Ranking is a database ordered ascending by distance to a query.
// Entries at equal distance keep their database order.
type Ranking []Neighbor

// Hamming ranks every database entry by Hamming distance to q.
//
// All len(db) entries are returned; callers truncate with Top. The sort is a
// counting sort over the bits+1 possible distances, which is stable, so ties
// keep the relative order of db. An empty database yields an empty ranking.
func Hamming(db []hashcode.Code, q hashcode.Code) (Ranking, error) {
	if len(db) == 0 {
		return Ranking{}, nil
	}

	bits := q.Len()
	dists := make([]int, len(db))
	counts := make([]int, bits+2)
	for i, c := range db {
		d, err := hashcode.Distance(q, c)
		if err != nil {
			return nil, err
		}
		dists[i] = d
		counts[d+1]++
	}

	// counts[d] becomes the first output slot for distance d.
	for d := 1; d < len(counts); d++ {
		counts[d] += counts[d-1]
	}

	out := make(Ranking, len(db))
	for i, d := range dists {
		out[counts[d]] = Neighbor{Index: i, Distance: d}
		counts[d]++
	}
	return out, nil
}

// Top returns the first k entries (or all of them if k exceeds the length).
func (r Ranking) Top(k int) Ranking {
	if k < 0 {
		k = 0
	}
	if k > len(r) {
		k = len(r)
	}
	return r[:k]
}

// Indices returns the database indices in ranked order.
func (r Ranking) Indices() []int {
	out := make([]int, len(r))
	for i, n := range r {
		out[i] = n.Index
	}
	return out
}

// Distances returns the distances in ranked order.
func (r Ranking) Distances() []int {
	out := make([]int, len(r))
	for i, n := range r {
		out[i] = n.Distance
	}
	return out
}

// Without returns a copy of s with element i removed.
// It is used to build leave-one-out databases; s is not modified.
func Without[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
