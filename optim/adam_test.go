package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/encoder"
)

func TestAdam_FirstStep(t *testing.T) {
	p := encoder.NewParam("w", mat.NewDense(1, 3, []float64{1, -2, 0.5}))
	p.Grad.SetRow(0, []float64{0.3, -0.1, 0})

	a, err := NewAdam([]*encoder.Param{p}, func(o *AdamOptions) { o.WeightDecay = 0 })
	require.NoError(t, err)
	require.NoError(t, a.Step())

	// First step with bias correction moves each weight by lr*sign(g).
	assert.InDelta(t, 1-1e-3, p.Value.At(0, 0), 1e-9)
	assert.InDelta(t, -2+1e-3, p.Value.At(0, 1), 1e-9)
	assert.InDelta(t, 0.5, p.Value.At(0, 2), 1e-12)
	assert.Equal(t, 1, a.Steps())
}

func TestAdam_WeightDecay(t *testing.T) {
	p := encoder.NewParam("w", mat.NewDense(1, 1, []float64{2}))

	a, err := NewAdam([]*encoder.Param{p}, func(o *AdamOptions) { o.WeightDecay = 0.1 })
	require.NoError(t, err)
	require.NoError(t, a.Step())

	// zero gradient, decay alone pulls the weight towards zero
	assert.Less(t, p.Value.At(0, 0), 2.0)
}

func TestAdam_MinimizesQuadratic(t *testing.T) {
	p := encoder.NewParam("w", mat.NewDense(1, 2, []float64{3, -4}))
	a, err := NewAdam([]*encoder.Param{p}, func(o *AdamOptions) {
		o.LearningRate = 0.05
		o.WeightDecay = 0
	})
	require.NoError(t, err)

	for range 2000 {
		a.ZeroGrad()
		// d/dw of sum(w^2)
		p.Grad.Scale(2, p.Value)
		require.NoError(t, a.Step())
	}
	assert.Less(t, math.Abs(p.Value.At(0, 0)), 0.1)
	assert.Less(t, math.Abs(p.Value.At(0, 1)), 0.1)
}

func TestAdam_ZeroGrad(t *testing.T) {
	p := encoder.NewParam("w", mat.NewDense(2, 2, nil))
	p.Grad.Set(1, 1, 5)

	a, err := NewAdam([]*encoder.Param{p})
	require.NoError(t, err)
	a.ZeroGrad()
	assert.Zero(t, mat.Sum(p.Grad))
}

func TestAdam_MarshalBinary(t *testing.T) {
	newParam := func() *encoder.Param {
		return encoder.NewParam("w", mat.NewDense(1, 2, []float64{1, 1}))
	}

	p1 := newParam()
	a1, err := NewAdam([]*encoder.Param{p1})
	require.NoError(t, err)
	p1.Grad.SetRow(0, []float64{0.5, -0.5})
	require.NoError(t, a1.Step())

	data, err := a1.MarshalBinary()
	require.NoError(t, err)

	p2 := newParam()
	p2.Value.Copy(p1.Value)
	a2, err := NewAdam([]*encoder.Param{p2})
	require.NoError(t, err)
	require.NoError(t, a2.UnmarshalBinary(data))
	assert.Equal(t, 1, a2.Steps())

	p1.Grad.SetRow(0, []float64{0.1, 0.2})
	p2.Grad.SetRow(0, []float64{0.1, 0.2})
	require.NoError(t, a1.Step())
	require.NoError(t, a2.Step())
	assert.True(t, mat.EqualApprox(p1.Value, p2.Value, 1e-12))

	other, err := NewAdam([]*encoder.Param{encoder.NewParam("w", mat.NewDense(1, 3, nil))})
	require.NoError(t, err)
	assert.Error(t, other.UnmarshalBinary(data))
}

func TestNewAdam_InvalidOptions(t *testing.T) {
	_, err := NewAdam(nil, func(o *AdamOptions) { o.LearningRate = 0 })
	assert.Error(t, err)
	_, err = NewAdam(nil, func(o *AdamOptions) { o.Beta1 = 1 })
	assert.Error(t, err)
}
