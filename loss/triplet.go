package loss

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/distance"
	"github.com/hupe1980/cmhash/labels"
	"github.com/hupe1980/cmhash/search"
)

// DefaultMargin is the triplet hinge margin.
const DefaultMargin = 0.2

// Triplets holds anchor, positive and negative row indices in parallel.
type Triplets struct {
	Anchors   []int
	Positives []int
	Negatives []int
}

// Len returns the number of triplets.
func (t Triplets) Len() int { return len(t.Anchors) }

// MineTriplets builds one triplet per row from label-space Hamming distance.
//
// Row i is the anchor. All other rows are ranked by the Hamming distance of
// their label vector to that of row i, ties in row order; the first is the
// positive and the last is the negative.
func MineTriplets(ls []labels.Set) (Triplets, error) {
	if len(ls) < 2 {
		return Triplets{}, ErrBatchTooSmall
	}
	if _, err := labels.Dim(ls); err != nil {
		return Triplets{}, err
	}

	codes := labels.Codes(ls)
	t := Triplets{
		Anchors:   make([]int, len(ls)),
		Positives: make([]int, len(ls)),
		Negatives: make([]int, len(ls)),
	}
	for i, q := range codes {
		r, err := search.Hamming(codes, q)
		if err != nil {
			return Triplets{}, err
		}
		others := make([]int, 0, len(r)-1)
		for _, n := range r {
			if n.Index != i {
				others = append(others, n.Index)
			}
		}
		t.Anchors[i] = i
		t.Positives[i] = others[0]
		t.Negatives[i] = others[len(others)-1]
	}
	return t, nil
}

// TripletLoss returns mean_i max(0, d(a_i,p_i) - d(a_i,n_i) + margin) with
// d(x,y) = ||x - y + eps||, and its gradients.
//
// Anchors are rows of anchor; positives and negatives are rows of other. The
// two matrices may be the same, in which case ga and gOther are the same
// accumulator too. Gradients are scaled by w and added into ga and go.
func TripletLoss(anchor, other *mat.Dense, t Triplets, margin, w float64, ga, gOther *mat.Dense) float64 {
	n := t.Len()
	if n == 0 {
		return 0
	}

	var v float64
	for i := range n {
		a := anchor.RawRowView(t.Anchors[i])
		p := other.RawRowView(t.Positives[i])
		ng := other.RawRowView(t.Negatives[i])

		up, dp := offsetDiff(a, p)
		un, dn := offsetDiff(a, ng)

		hinge := dp - dn + margin
		if hinge <= 0 {
			continue
		}
		v += hinge

		if ga == nil {
			continue
		}
		k := w / float64(n)
		gaRow := ga.RawRowView(t.Anchors[i])
		gpRow := gOther.RawRowView(t.Positives[i])
		gnRow := gOther.RawRowView(t.Negatives[i])
		for j := range a {
			gp := up[j] / dp
			gn := un[j] / dn
			gaRow[j] += k * (gp - gn)
			gpRow[j] -= k * gp
			gnRow[j] += k * gn
		}
	}
	return v / float64(n)
}

// offsetDiff returns u = x - y + eps and ||u||.
func offsetDiff(x, y []float64) ([]float64, float64) {
	u := make([]float64, len(x))
	var s float64
	for j := range x {
		u[j] = x[j] - y[j] + distance.PairwiseEps
		s += u[j] * u[j]
	}
	return u, math.Sqrt(s)
}

// TripletTerms holds the four triplet arrangements.
type TripletTerms struct {
	S1 float64
	S2 float64
	// S1S2 anchors in S1 with positives and negatives in S2.
	S1S2 float64
	// S2S1 anchors in S2 with positives and negatives in S1.
	S2S1  float64
	Total float64
}

// TripletWeight weights each of the four arrangements.
const TripletWeight = 0.25

// Triplet mines triplets from ls and returns the four-arrangement triplet loss
// with gradients for both modalities.
func Triplet(s1, s2 *mat.Dense, ls []labels.Set, margin float64) (TripletTerms, *mat.Dense, *mat.Dense, error) {
	if err := checkShapes(s1, s2, ls, -1); err != nil {
		return TripletTerms{}, nil, nil, err
	}
	t, err := MineTriplets(ls)
	if err != nil {
		return TripletTerms{}, nil, nil, err
	}

	b, c := s1.Dims()
	g1 := mat.NewDense(b, c, nil)
	g2 := mat.NewDense(b, c, nil)

	tt := TripletTerms{
		S1:   TripletLoss(s1, s1, t, margin, TripletWeight, g1, g1),
		S2:   TripletLoss(s2, s2, t, margin, TripletWeight, g2, g2),
		S1S2: TripletLoss(s1, s2, t, margin, TripletWeight, g1, g2),
		S2S1: TripletLoss(s2, s1, t, margin, TripletWeight, g2, g1),
	}
	tt.Total = TripletWeight * (tt.S1 + tt.S2 + tt.S1S2 + tt.S2S1)
	return tt, g1, g2, nil
}
