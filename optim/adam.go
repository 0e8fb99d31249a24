package optim

import (
	"fmt"
	"math"

	"github.com/hupe1980/cmhash/codec"
	"github.com/hupe1980/cmhash/encoder"
)

const (
	DefaultLearningRate = 1e-3
	DefaultWeightDecay  = 1e-4
)

// AdamOptions configures Adam.
type AdamOptions struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	// WeightDecay is added to the gradient as an L2 penalty before the moment updates.
	WeightDecay float64
}

// DefaultAdamOptions holds the default Adam settings.
var DefaultAdamOptions = AdamOptions{
	LearningRate: DefaultLearningRate,
	Beta1:        0.9,
	Beta2:        0.999,
	Epsilon:      1e-8,
	WeightDecay:  DefaultWeightDecay,
}

// Adam implements the Adam optimizer with bias correction.
type Adam struct {
	opts   AdamOptions
	params []*encoder.Param
	m, v   [][]float64
	t      int
}

var _ Optimizer = (*Adam)(nil)

// NewAdam creates an Adam optimizer over params.
func NewAdam(params []*encoder.Param, optFns ...func(o *AdamOptions)) (*Adam, error) {
	opts := DefaultAdamOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.LearningRate <= 0 {
		return nil, fmt.Errorf("optim: learning rate must be positive, got %g", opts.LearningRate)
	}
	if opts.Beta1 < 0 || opts.Beta1 >= 1 || opts.Beta2 < 0 || opts.Beta2 >= 1 {
		return nil, fmt.Errorf("optim: betas must be in [0,1), got %g, %g", opts.Beta1, opts.Beta2)
	}

	a := &Adam{opts: opts, params: params}
	a.m = make([][]float64, len(params))
	a.v = make([][]float64, len(params))
	for i, p := range params {
		n := len(p.Value.RawMatrix().Data)
		a.m[i] = make([]float64, n)
		a.v[i] = make([]float64, n)
	}
	return a, nil
}

// Options returns the optimizer settings.
func (a *Adam) Options() AdamOptions { return a.opts }

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int { return a.t }

// ZeroGrad clears every parameter gradient.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// Step applies one Adam update.
func (a *Adam) Step() error {
	a.t++
	o := a.opts
	bc1 := 1 - math.Pow(o.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(o.Beta2, float64(a.t))

	for i, p := range a.params {
		w := p.Value.RawMatrix().Data
		g := p.Grad.RawMatrix().Data
		if len(g) != len(w) {
			return fmt.Errorf("optim: parameter %q has %d gradients for %d values", p.Name, len(g), len(w))
		}
		m, v := a.m[i], a.v[i]
		for j := range w {
			gj := g[j] + o.WeightDecay*w[j]
			m[j] = o.Beta1*m[j] + (1-o.Beta1)*gj
			v[j] = o.Beta2*v[j] + (1-o.Beta2)*gj*gj
			mHat := m[j] / bc1
			vHat := v[j] / bc2
			w[j] -= o.LearningRate * mHat / (math.Sqrt(vHat) + o.Epsilon)
		}
	}
	return nil
}

type adamState struct {
	Step         int         `json:"step"`
	LearningRate float64     `json:"lr"`
	M            [][]float64 `json:"m"`
	V            [][]float64 `json:"v"`
}

// MarshalBinary encodes the step count and moment estimates.
func (a *Adam) MarshalBinary() ([]byte, error) {
	return codec.Default.Marshal(adamState{Step: a.t, LearningRate: a.opts.LearningRate, M: a.m, V: a.v})
}

// UnmarshalBinary restores state written by MarshalBinary.
// The optimizer must have been created over parameters of the same shapes.
func (a *Adam) UnmarshalBinary(data []byte) error {
	var st adamState
	if err := codec.Default.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("optim: %w", err)
	}
	if len(st.M) != len(a.m) || len(st.V) != len(a.v) {
		return fmt.Errorf("optim: state has %d parameters, expected %d", len(st.M), len(a.m))
	}
	for i := range a.m {
		if len(st.M[i]) != len(a.m[i]) || len(st.V[i]) != len(a.v[i]) {
			return fmt.Errorf("optim: state shape mismatch for parameter %d", i)
		}
	}
	a.t = st.Step
	a.m = st.M
	a.v = st.V
	return nil
}
