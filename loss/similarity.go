package loss

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/labels"
)

const (
	// IntraWeight weights the within-modality terms.
	IntraWeight = 0.33
	// InterWeight weights each cross-modality term.
	InterWeight = 0.0825
)

// SimilarityTerms holds the six MSE terms of the pairwise similarity loss.
type SimilarityTerms struct {
	S1Intra float64
	S2Intra float64
	Same1   float64
	Same2   float64
	Dif1    float64
	Dif2    float64
	// Total is the weighted combination.
	Total float64
}

// pairTerm is one cos-vs-target MSE over the h half-pairs.
type pairTerm struct {
	x, y       *mat.Dense
	gx, gy     *mat.Dense
	xOff, yOff int
	labelTgt   bool
}

// Similarity computes the pairwise cosine similarity loss.
//
// The batch is split into halves a = rows [0,h) and b = rows [h,2h), h = B/2.
// Within each modality cos(a_i, b_i) tracks the label cosine; across
// modalities same-row pairs are pulled to cosine 1 and crossed pairs track the
// label cosine. With legacy set the two crossed terms are multiplied instead
// of added. An odd trailing row takes no part and gets a zero gradient.
func Similarity(s1, s2 *mat.Dense, ls []labels.Set, legacy bool) (SimilarityTerms, *mat.Dense, *mat.Dense, error) {
	if err := checkShapes(s1, s2, ls, -1); err != nil {
		return SimilarityTerms{}, nil, nil, err
	}
	b, c := s1.Dims()
	if b < 2 {
		return SimilarityTerms{}, nil, nil, ErrBatchTooSmall
	}
	h := b / 2

	target := make([]float64, h)
	for i := range h {
		target[i] = ls[i].Cosine(ls[h+i])
	}

	g1 := mat.NewDense(b, c, nil)
	g2 := mat.NewDense(b, c, nil)

	terms := [6]pairTerm{
		{x: s1, y: s1, gx: g1, gy: g1, xOff: 0, yOff: h, labelTgt: true}, // S1Intra
		{x: s2, y: s2, gx: g2, gy: g2, xOff: 0, yOff: h, labelTgt: true}, // S2Intra
		{x: s1, y: s2, gx: g1, gy: g2, xOff: 0, yOff: 0},                 // Same1
		{x: s1, y: s2, gx: g1, gy: g2, xOff: h, yOff: h},                 // Same2
		{x: s1, y: s2, gx: g1, gy: g2, xOff: 0, yOff: h, labelTgt: true}, // Dif1
		{x: s1, y: s2, gx: g1, gy: g2, xOff: h, yOff: 0, labelTgt: true}, // Dif2
	}

	var (
		values [6]float64
		cosGx  [6][][]float64
		cosGy  [6][][]float64
		resid  [6][]float64
	)
	for t, pt := range terms {
		cosGx[t] = make([][]float64, h)
		cosGy[t] = make([][]float64, h)
		resid[t] = make([]float64, h)
		for i := range h {
			cs, gx, gy := cosineGrad(pt.x.RawRowView(pt.xOff+i), pt.y.RawRowView(pt.yOff+i))
			tgt := 1.0
			if pt.labelTgt {
				tgt = target[i]
			}
			d := cs - tgt
			values[t] += d * d
			resid[t][i] = d
			cosGx[t][i] = gx
			cosGy[t][i] = gy
		}
		values[t] /= float64(h)
	}

	st := SimilarityTerms{
		S1Intra: values[0],
		S2Intra: values[1],
		Same1:   values[2],
		Same2:   values[3],
		Dif1:    values[4],
		Dif2:    values[5],
	}

	weights := [6]float64{IntraWeight, IntraWeight, InterWeight, InterWeight, InterWeight, InterWeight}
	st.Total = IntraWeight*(st.S1Intra+st.S2Intra) + InterWeight*(st.Same1+st.Same2)
	if legacy {
		st.Total += InterWeight * st.Dif1 * InterWeight * st.Dif2
		weights[4] = InterWeight * InterWeight * st.Dif2
		weights[5] = InterWeight * InterWeight * st.Dif1
	} else {
		st.Total += InterWeight * (st.Dif1 + st.Dif2)
	}

	for t, pt := range terms {
		for i := range h {
			// d/dcos of the mean squared error
			k := weights[t] * 2 * resid[t][i] / float64(h)
			addRow(pt.gx, pt.xOff+i, k, cosGx[t][i])
			addRow(pt.gy, pt.yOff+i, k, cosGy[t][i])
		}
	}
	return st, g1, g2, nil
}

func addRow(g *mat.Dense, row int, k float64, v []float64) {
	dst := g.RawRowView(row)
	for j := range dst {
		dst[j] += k * v[j]
	}
}

func checkShapes(s1, s2 *mat.Dense, ls []labels.Set, bits int) error {
	r1, c1 := s1.Dims()
	r2, c2 := s2.Dims()
	if r2 != r1 {
		return &ErrShape{Op: "S2 rows", Expected: r1, Actual: r2}
	}
	if len(ls) != r1 {
		return &ErrShape{Op: "label rows", Expected: r1, Actual: len(ls)}
	}
	if c2 != c1 {
		return &ErrShape{Op: "S2 bits", Expected: c1, Actual: c2}
	}
	if bits > 0 && c1 != bits {
		return &ErrShape{Op: "bits", Expected: bits, Actual: c1}
	}
	return nil
}
