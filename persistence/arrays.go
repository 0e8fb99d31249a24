package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
)

// EncodeCodes frames a set of equal-length codes as a KindCodes artifact.
func EncodeCodes(codes []hashcode.Code, c Compression) ([]byte, error) {
	return encodeCodes(KindCodes, codes, c)
}

// DecodeCodes reads a KindCodes artifact.
func DecodeCodes(data []byte) ([]hashcode.Code, error) {
	return decodeCodes(KindCodes, data)
}

// EncodeLabels frames label sets as a KindLabels artifact, one bit per class.
func EncodeLabels(ls []labels.Set, c Compression) ([]byte, error) {
	return encodeCodes(KindLabels, labels.Codes(ls), c)
}

// DecodeLabels reads a KindLabels artifact.
func DecodeLabels(data []byte) ([]labels.Set, error) {
	codes, err := decodeCodes(KindLabels, data)
	if err != nil {
		return nil, err
	}
	out := make([]labels.Set, len(codes))
	for i, code := range codes {
		out[i] = labels.FromCode(code)
	}
	return out, nil
}

func encodeCodes(kind Kind, codes []hashcode.Code, c Compression) ([]byte, error) {
	bits := 0
	if len(codes) > 0 {
		bits = codes[0].Len()
	}
	words := (bits + 63) / 64

	payload := make([]byte, 0, len(codes)*words*8)
	for _, code := range codes {
		if code.Len() != bits {
			return nil, &hashcode.ErrLengthMismatch{Expected: bits, Actual: code.Len()}
		}
		for _, w := range code.Words() {
			payload = binary.LittleEndian.AppendUint64(payload, w)
		}
	}
	return frame(kind, c, len(codes), bits, payload)
}

func decodeCodes(kind Kind, data []byte) ([]hashcode.Code, error) {
	h, payload, err := unframe(data, kind)
	if err != nil {
		return nil, err
	}
	rows, bits := int(h.Rows), int(h.Cols)
	words := (bits + 63) / 64
	if len(payload) != rows*words*8 {
		return nil, fmt.Errorf("%w: %d rows of %d bits need %d bytes, got %d", ErrTruncated, rows, bits, rows*words*8, len(payload))
	}

	out := make([]hashcode.Code, rows)
	buf := make([]uint64, words)
	for i := range rows {
		row := payload[i*words*8:]
		for j := range buf {
			buf[j] = binary.LittleEndian.Uint64(row[j*8:])
		}
		code, err := hashcode.FromWords(buf, bits)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}
