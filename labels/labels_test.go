package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(5, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Dim())
	assert.Equal(t, 2, s.Count())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(1))
	assert.False(t, s.Contains(-1))
	assert.Equal(t, []uint32{0, 3}, s.Classes())

	_, err = New(3, 3)
	assert.Error(t, err)
}

func TestMultiHotRoundTrip(t *testing.T) {
	v := []float64{0, 1, 1, 0, 1}
	s := FromMultiHot(v)
	assert.Equal(t, v, s.MultiHot())
	assert.True(t, s.Equal(FromCode(s.Code())))
	assert.Equal(t, "01101", s.Code().String())
}

func TestSharedHammingCosine(t *testing.T) {
	a := MustNew(6, 0, 1, 2)
	b := MustNew(6, 2, 3)
	empty := MustNew(6)

	assert.Equal(t, 1, a.Shared(b))
	assert.Equal(t, 3, a.Hamming(b))
	assert.Equal(t, a.Hamming(b), b.Hamming(a))
	assert.Zero(t, a.Hamming(a))
	assert.InDelta(t, 1/(1.7320508075688772*1.4142135623730951), a.Cosine(b), 1e-12)
	assert.InDelta(t, 1.0, a.Cosine(a), 1e-12)
	assert.Zero(t, a.Cosine(empty))
	assert.Zero(t, empty.Cosine(empty))
}

func TestZeroValue(t *testing.T) {
	var s Set
	assert.Zero(t, s.Count())
	assert.Zero(t, s.Shared(MustNew(3, 1)))
	assert.Empty(t, s.Classes())
}

func TestDim(t *testing.T) {
	d, err := Dim([]Set{MustNew(4, 1), MustNew(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, d)

	_, err = Dim([]Set{MustNew(4), MustNew(5)})
	assert.Error(t, err)

	d, err = Dim(nil)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestCodes(t *testing.T) {
	codes := Codes([]Set{MustNew(3, 0), MustNew(3, 1, 2)})
	require.Len(t, codes, 2)
	assert.Equal(t, "100", codes[0].String())
	assert.Equal(t, "011", codes[1].String())
}
