package loss

import (
	"gonum.org/v1/gonum/mat"
)

// Push measures how far logits sit from 0.5:
// the sum over bits of (z-0.5)^2, averaged over rows and modalities.
// It is largest when every logit is 0 or 1 and zero when every logit is 0.5.
// The returned gradients have the shapes of the inputs.
func Push(logits ...*mat.Dense) (float64, []*mat.Dense) {
	n := rowsOf(logits)
	grads := make([]*mat.Dense, len(logits))
	if n == 0 {
		return 0, grads
	}
	scale := 1 / float64(len(logits)*n)

	var v float64
	for m, z := range logits {
		r, c := z.Dims()
		g := mat.NewDense(r, c, nil)
		for i := range r {
			for j := range c {
				d := z.At(i, j) - 0.5
				v += d * d
				g.Set(i, j, 2*d*scale)
			}
		}
		grads[m] = g
	}
	return v * scale, grads
}

// Balance measures how far each row's mean logit sits from 0.5:
// (mean_j z - 0.5)^2, averaged over rows and modalities.
// It is zero iff every row of every modality has mean 0.5.
func Balance(logits ...*mat.Dense) (float64, []*mat.Dense) {
	n := rowsOf(logits)
	grads := make([]*mat.Dense, len(logits))
	if n == 0 {
		return 0, grads
	}
	scale := 1 / float64(len(logits)*n)

	var v float64
	for m, z := range logits {
		r, c := z.Dims()
		g := mat.NewDense(r, c, nil)
		for i := range r {
			d := mat.Sum(z.RowView(i))/float64(c) - 0.5
			v += d * d
			gij := 2 * d * scale / float64(c)
			for j := range c {
				g.Set(i, j, gij)
			}
		}
		grads[m] = g
	}
	return v * scale, grads
}

func rowsOf(logits []*mat.Dense) int {
	if len(logits) == 0 {
		return 0
	}
	r, _ := logits[0].Dims()
	return r
}
