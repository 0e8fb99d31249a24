// Package encoder defines the contract between the trainer and a modality
// encoder, and ships Linear, a dense sigmoid encoder on gonum.
package encoder

import (
	"encoding"
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrNoForward is returned by Backward when no training-mode Forward preceded it.
var ErrNoForward = errors.New("encoder: backward without forward")

// Encoder maps a batch of inputs (B×InputDim) to logits in [0,1] (B×Bits).
//
// In training mode Forward keeps what Backward needs; Backward accumulates
// parameter gradients from dLoss/dlogits into Params. Implementations are not
// safe for concurrent use.
type Encoder interface {
	Bits() int
	InputDim() int
	Forward(x *mat.Dense) (*mat.Dense, error)
	Backward(grad *mat.Dense) error
	SetTraining(training bool)
	Params() []*Param

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Param is a trainable tensor with its accumulated gradient.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

// NewParam creates a parameter with a zero gradient of the same shape.
func NewParam(name string, value *mat.Dense) *Param {
	r, c := value.Dims()
	return &Param{Name: name, Value: value, Grad: mat.NewDense(r, c, nil)}
}

// ZeroGrad clears the gradient.
func (p *Param) ZeroGrad() { p.Grad.Zero() }
