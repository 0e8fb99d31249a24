// Package hashcode provides bit-packed binary hash codes and the binarization
// that turns encoder logits into codes.
package hashcode

import (
	"fmt"

	"github.com/hupe1980/cmhash/distance"
)

// ErrLengthMismatch indicates two codes (or a code and a vector) of different bit length.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("code length mismatch: expected %d bits, got %d", e.Expected, e.Actual)
}

// Code is a fixed-length binary code.
// Bits are packed little-endian into uint64 words: bit i lives in word i/64 at position i%64.
type Code struct {
	words []uint64
	bits  int
}

// New returns an all-zero code of the given length.
func New(bits int) Code {
	return Code{
		words: make([]uint64, (bits+63)/64),
		bits:  bits,
	}
}

// FromBits builds a code from a slice of 0/1 values.
// Any non-zero entry is treated as 1.
func FromBits(b []uint8) Code {
	c := New(len(b))
	for i, v := range b {
		if v != 0 {
			c.set(i)
		}
	}
	return c
}

// FromWords wraps packed words as a code of the given length.
// Bits beyond the length are cleared.
func FromWords(words []uint64, bits int) (Code, error) {
	if need := (bits + 63) / 64; len(words) != need {
		return Code{}, fmt.Errorf("hashcode: %d bits need %d words, got %d", bits, need, len(words))
	}
	c := Code{words: append([]uint64(nil), words...), bits: bits}
	if rem := bits % 64; rem != 0 {
		c.words[len(c.words)-1] &= (1 << rem) - 1
	}
	return c, nil
}

func (c Code) set(i int) {
	c.words[i/64] |= 1 << (i % 64)
}

// Len returns the code length in bits.
func (c Code) Len() int { return c.bits }

// Words returns the packed representation. The slice must not be modified.
func (c Code) Words() []uint64 { return c.words }

// Bit returns bit i as 0 or 1.
func (c Code) Bit(i int) uint8 {
	return uint8(c.words[i/64] >> (i % 64) & 1)
}

// Ones returns the number of set bits.
func (c Code) Ones() int {
	return distance.OnesCount(c.words)
}

// Floats returns the code as a {0,1} vector.
func (c Code) Floats() []float64 {
	out := make([]float64, c.bits)
	for i := range out {
		out[i] = float64(c.Bit(i))
	}
	return out
}

// Equal reports whether two codes have the same length and bits.
func (c Code) Equal(o Code) bool {
	if c.bits != o.bits {
		return false
	}
	for i := range c.words {
		if c.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// String renders the code MSB-last, e.g. "0110".
func (c Code) String() string {
	b := make([]byte, c.bits)
	for i := range b {
		b[i] = '0' + c.Bit(i)
	}
	return string(b)
}

// Distance returns the Hamming distance between two codes.
func Distance(a, b Code) (int, error) {
	if a.bits != b.bits {
		return 0, &ErrLengthMismatch{Expected: a.bits, Actual: b.bits}
	}
	return distance.Hamming(a.words, b.words), nil
}

// Parse reads a code from a string of '0' and '1' characters.
func Parse(s string) (Code, error) {
	c := New(len(s))
	for i, r := range s {
		switch r {
		case '0':
		case '1':
			c.set(i)
		default:
			return Code{}, fmt.Errorf("hashcode: invalid character %q at %d", r, i)
		}
	}
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for tests and fixtures.
func MustParse(s string) Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}
