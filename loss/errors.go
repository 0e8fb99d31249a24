package loss

import (
	"errors"
	"fmt"
)

// ErrBatchTooSmall is returned when a batch has fewer than two rows.
var ErrBatchTooSmall = errors.New("loss: batch needs at least two rows")

// ErrShape is returned when logits or labels do not line up.
type ErrShape struct {
	Op       string
	Expected int
	Actual   int
}

func (e *ErrShape) Error() string {
	return fmt.Sprintf("loss: %s: expected %d, got %d", e.Op, e.Expected, e.Actual)
}
