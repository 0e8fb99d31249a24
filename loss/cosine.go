package loss

import (
	"math"

	"github.com/hupe1980/cmhash/distance"
)

// cosineGrad returns cos(a, b) and its partial derivatives.
// Norms below distance.CosineEps are clamped, in which case the
// normalization term drops out of that side's derivative.
func cosineGrad(a, b []float64) (c float64, ga, gb []float64) {
	dot := distance.Dot(a, b)
	na := distance.Norm(a)
	nb := distance.Norm(b)
	ca := math.Max(na, distance.CosineEps)
	cb := math.Max(nb, distance.CosineEps)
	c = dot / (ca * cb)

	ga = make([]float64, len(a))
	gb = make([]float64, len(b))
	for j := range a {
		ga[j] = b[j] / (ca * cb)
		gb[j] = a[j] / (ca * cb)
		if na > distance.CosineEps {
			ga[j] -= c * a[j] / (na * na)
		}
		if nb > distance.CosineEps {
			gb[j] -= c * b[j] / (nb * nb)
		}
	}
	return c, ga, gb
}
