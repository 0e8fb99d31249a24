package encoder

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/codec"
)

// Linear computes sigmoid(x·Wᵀ + b).
type Linear struct {
	in, bits int

	weight *Param // bits×in
	bias   *Param // 1×bits

	training bool
	lastX    *mat.Dense
	lastY    *mat.Dense
}

var _ Encoder = (*Linear)(nil)

// NewLinear creates a linear encoder with Xavier-uniform weights drawn from rng.
func NewLinear(in, bits int, rng *rand.Rand) (*Linear, error) {
	if in <= 0 || bits <= 0 {
		return nil, fmt.Errorf("encoder: invalid shape %d→%d", in, bits)
	}

	limit := math.Sqrt(6 / float64(in+bits))
	w := make([]float64, bits*in)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}

	return &Linear{
		in:     in,
		bits:   bits,
		weight: NewParam("weight", mat.NewDense(bits, in, w)),
		bias:   NewParam("bias", mat.NewDense(1, bits, nil)),
	}, nil
}

// Bits returns the code length.
func (l *Linear) Bits() int { return l.bits }

// InputDim returns the expected input width.
func (l *Linear) InputDim() int { return l.in }

// SetTraining switches between training and inference mode.
func (l *Linear) SetTraining(training bool) {
	l.training = training
	if !training {
		l.lastX, l.lastY = nil, nil
	}
}

// Params returns the weight and bias parameters.
func (l *Linear) Params() []*Param { return []*Param{l.weight, l.bias} }

// Forward encodes a batch.
func (l *Linear) Forward(x *mat.Dense) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != l.in {
		return nil, fmt.Errorf("encoder: input width %d, expected %d", c, l.in)
	}

	y := mat.NewDense(r, l.bits, nil)
	y.Mul(x, l.weight.Value.T())
	b := l.bias.Value.RawRowView(0)
	y.Apply(func(_, j int, v float64) float64 {
		return sigmoid(v + b[j])
	}, y)

	if l.training {
		l.lastX, l.lastY = x, y
	}
	return y, nil
}

// Backward accumulates weight and bias gradients for the last Forward.
func (l *Linear) Backward(grad *mat.Dense) error {
	if l.lastX == nil {
		return ErrNoForward
	}
	r, c := grad.Dims()
	yr, yc := l.lastY.Dims()
	if r != yr || c != yc {
		return fmt.Errorf("encoder: gradient shape %d×%d, expected %d×%d", r, c, yr, yc)
	}

	// dz = grad ⊙ y(1-y)
	dz := mat.NewDense(r, c, nil)
	dz.Apply(func(i, j int, g float64) float64 {
		y := l.lastY.At(i, j)
		return g * y * (1 - y)
	}, grad)

	var dw mat.Dense
	dw.Mul(dz.T(), l.lastX)
	l.weight.Grad.Add(l.weight.Grad, &dw)

	db := l.bias.Grad.RawRowView(0)
	for i := range r {
		for j, v := range dz.RawRowView(i) {
			db[j] += v
		}
	}
	return nil
}

type linearState struct {
	In     int       `json:"in"`
	Bits   int       `json:"bits"`
	Weight []float64 `json:"weight"`
	Bias   []float64 `json:"bias"`
}

// MarshalBinary encodes the parameters.
func (l *Linear) MarshalBinary() ([]byte, error) {
	return codec.Default.Marshal(linearState{
		In:     l.in,
		Bits:   l.bits,
		Weight: l.weight.Value.RawMatrix().Data,
		Bias:   l.bias.Value.RawRowView(0),
	})
}

// UnmarshalBinary restores parameters written by MarshalBinary.
// The encoder shape must match.
func (l *Linear) UnmarshalBinary(data []byte) error {
	var st linearState
	if err := codec.Default.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	if st.In != l.in || st.Bits != l.bits || len(st.Weight) != l.in*l.bits || len(st.Bias) != l.bits {
		return fmt.Errorf("encoder: state shape %d→%d does not match %d→%d", st.In, st.Bits, l.in, l.bits)
	}
	copy(l.weight.Value.RawMatrix().Data, st.Weight)
	copy(l.bias.Value.RawRowView(0), st.Bias)
	return nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
