package hashcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCode_Packing(t *testing.T) {
	c := FromBits([]uint8{1, 0, 1, 1})
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []uint64{0b1101}, c.Words())
	assert.Equal(t, "1011", c.String())
	assert.Equal(t, 3, c.Ones())

	long := New(130)
	assert.Len(t, long.Words(), 3)
}

func TestFromWords_ClearsTail(t *testing.T) {
	c, err := FromWords([]uint64{0xFF}, 4)
	require.NoError(t, err)
	assert.Equal(t, "1111", c.String())
	assert.Equal(t, uint64(0xF), c.Words()[0])

	_, err = FromWords([]uint64{0, 0}, 4)
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"Identical", "0110", "0110", 0},
		{"One", "0000", "0001", 1},
		{"All", "0000", "1111", 4},
		{"Wide", "1010101010101010101010101010101010101010101010101010101010101010101", "0101010101010101010101010101010101010101010101010101010101010101010", 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			d, err := Distance(a, b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)

			// Symmetric.
			d2, err := Distance(b, a)
			require.NoError(t, err)
			assert.Equal(t, d, d2)
		})
	}
}

func TestDistance_ZeroIffEqual(t *testing.T) {
	a := MustParse("10110")
	b := MustParse("10111")
	d, err := Distance(a, a)
	require.NoError(t, err)
	assert.Zero(t, d)
	assert.True(t, a.Equal(a))

	d, err = Distance(a, b)
	require.NoError(t, err)
	assert.NotZero(t, d)
	assert.False(t, a.Equal(b))
}

func TestDistance_LengthMismatch(t *testing.T) {
	_, err := Distance(New(4), New(5))
	var lm *ErrLengthMismatch
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 4, lm.Expected)
	assert.Equal(t, 5, lm.Actual)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("01x")
	assert.Error(t, err)
	assert.Panics(t, func() { MustParse("2") })
}

func TestBinarize(t *testing.T) {
	assert.Equal(t, 0.0, Binarize(0.1))
	assert.Equal(t, 0.0, Binarize(0.5))
	assert.Equal(t, 1.0, Binarize(0.500001))
	assert.Equal(t, 1.0, Binarize(1))
	assert.Equal(t, 0.0, Binarize(0))
}

func TestBinarizer_Encode(t *testing.T) {
	bz := NewBinarizer(8)
	c, err := bz.Encode([]float64{0.0, 0.4, 0.5, 0.6, 1.0, -1.0, 0.51, 0.49})
	require.NoError(t, err)
	assert.Equal(t, "00011010", c.String())

	_, err = bz.Encode([]float64{1})
	assert.Error(t, err)
}

func TestBinarizer_Idempotent(t *testing.T) {
	bz := NewBinarizer(6)
	binary := []float64{0, 1, 1, 0, 0, 1}
	c, err := bz.Encode(binary)
	require.NoError(t, err)
	assert.Equal(t, binary, bz.Decode(c))

	again, err := bz.Encode(bz.Decode(c))
	require.NoError(t, err)
	assert.True(t, c.Equal(again))
}

func TestBinarizer_EncodeMatrix(t *testing.T) {
	bz := NewBinarizer(3)
	m := mat.NewDense(2, 3, []float64{
		0.9, 0.1, 0.7,
		0.2, 0.8, 0.5,
	})
	codes, err := bz.EncodeMatrix(m)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "101", codes[0].String())
	assert.Equal(t, "010", codes[1].String())

	_, err = NewBinarizer(4).EncodeMatrix(m)
	assert.Error(t, err)
}

func TestBinarizer_WithThreshold(t *testing.T) {
	bz := NewBinarizer(3).WithThreshold(0)
	assert.Equal(t, 0.0, bz.Threshold())
	c, err := bz.Encode([]float64{-0.1, 0, 0.1})
	require.NoError(t, err)
	assert.Equal(t, "001", c.String())
}
