// Package labels represents multi-hot semantic label vectors as class sets.
package labels

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/cmhash/hashcode"
)

// Set is a multi-hot label vector of fixed dimensionality.
// Positive classes are kept in a roaring bitmap; a Set is immutable once built.
type Set struct {
	classes *roaring.Bitmap
	dim     int
}

// New creates a label set of dimension dim with the given positive classes.
func New(dim int, classes ...uint32) (Set, error) {
	for _, c := range classes {
		if int(c) >= dim {
			return Set{}, fmt.Errorf("labels: class %d out of range for dimension %d", c, dim)
		}
	}
	return Set{classes: roaring.BitmapOf(classes...), dim: dim}, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(dim int, classes ...uint32) Set {
	s, err := New(dim, classes...)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMultiHot builds a set from a multi-hot vector. Entries > 0.5 are positive.
func FromMultiHot(v []float64) Set {
	bm := roaring.New()
	for i, x := range v {
		if x > 0.5 {
			bm.Add(uint32(i))
		}
	}
	return Set{classes: bm, dim: len(v)}
}

// FromCode converts a packed code (one bit per class) back into a set.
func FromCode(c hashcode.Code) Set {
	bm := roaring.New()
	for i := range c.Len() {
		if c.Bit(i) == 1 {
			bm.Add(uint32(i))
		}
	}
	return Set{classes: bm, dim: c.Len()}
}

func (s Set) bitmap() *roaring.Bitmap {
	if s.classes == nil {
		return roaring.New()
	}
	return s.classes
}

// Dim returns the label dimensionality (number of semantic classes).
func (s Set) Dim() int { return s.dim }

// Count returns the number of positive classes.
func (s Set) Count() int { return int(s.bitmap().GetCardinality()) }

// Contains reports whether class c is positive.
func (s Set) Contains(c int) bool {
	return c >= 0 && s.bitmap().Contains(uint32(c))
}

// Classes returns the positive class indices in ascending order.
func (s Set) Classes() []uint32 { return s.bitmap().ToArray() }

// Shared returns the number of positive classes common to both sets,
// i.e. the dot product of the two multi-hot vectors.
func (s Set) Shared(o Set) int {
	return int(s.bitmap().AndCardinality(o.bitmap()))
}

// Hamming returns the number of label positions where the two vectors differ.
func (s Set) Hamming(o Set) int {
	a, b := s.bitmap(), o.bitmap()
	return int(a.OrCardinality(b) - a.AndCardinality(b))
}

// Cosine returns the cosine similarity of the two multi-hot vectors.
// Empty sets yield 0.
func (s Set) Cosine(o Set) float64 {
	na := math.Max(math.Sqrt(float64(s.Count())), 1e-8)
	nb := math.Max(math.Sqrt(float64(o.Count())), 1e-8)
	return float64(s.Shared(o)) / (na * nb)
}

// Equal reports whether both sets have the same dimension and classes.
func (s Set) Equal(o Set) bool {
	return s.dim == o.dim && s.bitmap().Equals(o.bitmap())
}

// MultiHot returns the dense {0,1} vector.
func (s Set) MultiHot() []float64 {
	v := make([]float64, s.dim)
	it := s.bitmap().Iterator()
	for it.HasNext() {
		v[it.Next()] = 1
	}
	return v
}

// Code packs the set into a binary code with one bit per class.
func (s Set) Code() hashcode.Code {
	b := make([]uint8, s.dim)
	it := s.bitmap().Iterator()
	for it.HasNext() {
		b[it.Next()] = 1
	}
	return hashcode.FromBits(b)
}

func (s Set) String() string {
	return fmt.Sprintf("%v/%d", s.Classes(), s.dim)
}

// Codes packs every set; see Set.Code.
func Codes(sets []Set) []hashcode.Code {
	out := make([]hashcode.Code, len(sets))
	for i, s := range sets {
		out[i] = s.Code()
	}
	return out
}

// Dim returns the common dimension of sets, or an error if they disagree.
// An empty slice has dimension 0.
func Dim(sets []Set) (int, error) {
	if len(sets) == 0 {
		return 0, nil
	}
	d := sets[0].dim
	for i, s := range sets[1:] {
		if s.dim != d {
			return 0, fmt.Errorf("labels: set %d has dimension %d, expected %d", i+1, s.dim, d)
		}
	}
	return d, nil
}
