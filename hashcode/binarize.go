package hashcode

import (
	"gonum.org/v1/gonum/mat"
)

// DefaultThreshold is the decision boundary for sigmoid-bounded logits.
const DefaultThreshold = 0.5

// Binarize maps a logit to {0,1} via (sign(z − 0.5) + 1) / 2.
// A logit exactly at the threshold maps to 0, so the result is always binary.
func Binarize(z float64) float64 {
	if z > DefaultThreshold {
		return 1
	}
	return 0
}

// Binarizer converts fixed-length logit vectors into codes.
//
// Values strictly greater than the threshold become 1, everything else 0.
// Already-binary {0,1} input is returned unchanged by Decode(Encode(v)).
type Binarizer struct {
	bits      int
	threshold float64
}

// NewBinarizer creates a binarizer for codes of the given length
// with DefaultThreshold.
func NewBinarizer(bits int) *Binarizer {
	return &Binarizer{
		bits:      bits,
		threshold: DefaultThreshold,
	}
}

// WithThreshold sets a custom threshold.
func (b *Binarizer) WithThreshold(threshold float64) *Binarizer {
	b.threshold = threshold
	return b
}

// Bits returns the code length.
func (b *Binarizer) Bits() int { return b.bits }

// Threshold returns the current threshold value.
func (b *Binarizer) Threshold() float64 { return b.threshold }

// Encode binarizes a single logit vector.
func (b *Binarizer) Encode(v []float64) (Code, error) {
	if len(v) != b.bits {
		return Code{}, &ErrLengthMismatch{Expected: b.bits, Actual: len(v)}
	}
	c := New(b.bits)
	for i, z := range v {
		if z > b.threshold {
			c.set(i)
		}
	}
	return c, nil
}

// EncodeMatrix binarizes every row of a logits matrix.
func (b *Binarizer) EncodeMatrix(m *mat.Dense) ([]Code, error) {
	rows, cols := m.Dims()
	if cols != b.bits {
		return nil, &ErrLengthMismatch{Expected: b.bits, Actual: cols}
	}
	codes := make([]Code, rows)
	for i := range rows {
		c, err := b.Encode(m.RawRowView(i))
		if err != nil {
			return nil, err
		}
		codes[i] = c
	}
	return codes, nil
}

// Decode returns the code as a {0,1} vector.
func (b *Binarizer) Decode(c Code) []float64 {
	return c.Floats()
}
