package persistence

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmhash/codec"
	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
	"github.com/hupe1980/cmhash/testutil"
)

func TestHeaderSize(t *testing.T) {
	h := FileHeader{Magic: MagicNumber, Version: Version}
	assert.Len(t, h.marshal(), headerSize)
	assert.Equal(t, []byte("CMH1"), h.marshal()[:4])
}

func TestCodesRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(1)

	for _, bits := range []int{1, 16, 64, 100} {
		for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			codes := rng.Codes(37, bits)
			data, err := EncodeCodes(codes, c)
			require.NoError(t, err)

			got, err := DecodeCodes(data)
			require.NoError(t, err)
			require.Len(t, got, len(codes))
			for i := range codes {
				assert.True(t, codes[i].Equal(got[i]), "bits=%d %s row %d", bits, c, i)
			}
		}
	}
}

func TestCodesCompressible(t *testing.T) {
	codes := make([]hashcode.Code, 512)
	for i := range codes {
		codes[i] = hashcode.MustParse("1010101010101010")
	}
	raw, err := EncodeCodes(codes, CompressionNone)
	require.NoError(t, err)
	packed, err := EncodeCodes(codes, CompressionLZ4)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(raw))

	h, err := readHeader(packed)
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, h.Compression)
	assert.Equal(t, uint32(512), h.Rows)
	assert.Equal(t, uint32(16), h.Cols)
}

func TestCodesEmpty(t *testing.T) {
	data, err := EncodeCodes(nil, CompressionLZ4)
	require.NoError(t, err)
	got, err := DecodeCodes(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCodesLengthMismatch(t *testing.T) {
	_, err := EncodeCodes([]hashcode.Code{hashcode.New(8), hashcode.New(16)}, CompressionNone)
	var lm *hashcode.ErrLengthMismatch
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 8, lm.Expected)
	assert.Equal(t, 16, lm.Actual)
}

func TestLabelsRoundTrip(t *testing.T) {
	ls := testutil.NewRNG(2).Labels(20, 19, 4)
	ls = append(ls, labels.MustNew(19))

	data, err := EncodeLabels(ls, CompressionZSTD)
	require.NoError(t, err)
	got, err := DecodeLabels(data)
	require.NoError(t, err)
	require.Len(t, got, len(ls))
	for i := range ls {
		assert.True(t, ls[i].Equal(got[i]), "row %d", i)
		assert.Equal(t, 19, got[i].Dim())
	}

	_, err = DecodeCodes(data)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestStringsRoundTrip(t *testing.T) {
	names := []string{"S1_patch_0001", "", "S2_ünïcode", "x"}
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		data, err := EncodeStrings(names, c)
		require.NoError(t, err)
		got, err := DecodeStrings(data)
		require.NoError(t, err)
		assert.Equal(t, names, got)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cp := Checkpoint{
		Run:         "20260101_120000_16_20_MSELoss",
		Epoch:       7,
		BestScore:   0.8125,
		Bits:        16,
		EncoderS1:   []byte{1, 2, 3},
		EncoderS2:   bytes.Repeat([]byte{9}, 4096),
		OptimizerS1: []byte("adam"),
	}

	for _, c := range []codec.Codec{nil, codec.JSON{}, codec.GoJSON{}} {
		data, err := EncodeCheckpoint(cp, c)
		require.NoError(t, err)
		got, err := DecodeCheckpoint(data)
		require.NoError(t, err)
		assert.Equal(t, cp.Run, got.Run)
		assert.Equal(t, cp.Epoch, got.Epoch)
		assert.InDelta(t, cp.BestScore, got.BestScore, 0)
		assert.Equal(t, cp.EncoderS1, got.EncoderS1)
		assert.Equal(t, cp.EncoderS2, got.EncoderS2)
		assert.Equal(t, cp.OptimizerS1, got.OptimizerS1)
		assert.Empty(t, got.OptimizerS2)
	}
}

func TestCorruption(t *testing.T) {
	data, err := EncodeStrings([]string{"alpha", "beta", "gamma"}, CompressionNone)
	require.NoError(t, err)

	t.Run("Checksum", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[len(bad)-1] ^= 0xff
		_, err := DecodeStrings(bad)
		assert.True(t, IsChecksumMismatch(err))
	})

	t.Run("Magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = 'X'
		_, err := DecodeStrings(bad)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := DecodeStrings(data[:headerSize+3])
		assert.ErrorIs(t, err, ErrTruncated)

		_, err = DecodeStrings(data[:10])
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}
