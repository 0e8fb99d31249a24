package cmhash

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyValidation is returned when the validation loader yields no items.
	ErrEmptyValidation = errors.New("empty validation set")

	// ErrEmptyTraining is returned when the training loader yields no batches.
	ErrEmptyTraining = errors.New("empty training set")

	// ErrNonFiniteLoss is returned when the objective evaluates to NaN or Inf.
	ErrNonFiniteLoss = errors.New("non-finite loss")
)

// ErrBitsMismatch indicates an encoder whose code length differs from the
// configured number of bits.
type ErrBitsMismatch struct {
	Modality string
	Expected int
	Actual   int
}

func (e *ErrBitsMismatch) Error() string {
	return fmt.Sprintf("%s encoder bits mismatch: expected %d, got %d", e.Modality, e.Expected, e.Actual)
}

// ErrStep wraps a failure in one training step.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrStep struct {
	Epoch int
	Batch int
	cause error
}

func (e *ErrStep) Error() string {
	return fmt.Sprintf("epoch %d batch %d: %v", e.Epoch, e.Batch, e.cause)
}

func (e *ErrStep) Unwrap() error { return e.cause }
