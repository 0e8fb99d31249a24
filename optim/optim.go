// Package optim updates encoder parameters from their accumulated gradients.
package optim

import (
	"encoding"
)

// Optimizer updates a fixed set of parameters.
type Optimizer interface {
	// ZeroGrad clears the gradients of every parameter.
	ZeroGrad()
	// Step applies one update from the current gradients.
	Step() error

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}
