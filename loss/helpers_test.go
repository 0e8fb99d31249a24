package loss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

const fdStep = 1e-6

// numericGrad estimates df/dm by central differences, perturbing m in place.
func numericGrad(m *mat.Dense, f func() float64) *mat.Dense {
	r, c := m.Dims()
	g := mat.NewDense(r, c, nil)
	for i := range r {
		for j := range c {
			orig := m.At(i, j)
			m.Set(i, j, orig+fdStep)
			up := f()
			m.Set(i, j, orig-fdStep)
			down := f()
			m.Set(i, j, orig)
			g.Set(i, j, (up-down)/(2*fdStep))
		}
	}
	return g
}

func assertGradClose(t *testing.T, want, got *mat.Dense, tol float64) {
	t.Helper()
	r, c := want.Dims()
	gr, gc := got.Dims()
	if !assert.Equal(t, r, gr) || !assert.Equal(t, c, gc) {
		return
	}
	for i := range r {
		for j := range c {
			assert.InDelta(t, want.At(i, j), got.At(i, j), tol, "(%d,%d)", i, j)
		}
	}
}
