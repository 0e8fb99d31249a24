package persistence

import (
	"encoding/binary"
	"fmt"
)

// EncodeStrings frames a list of strings as a KindStrings artifact.
// Each entry is stored as a uvarint length followed by its bytes.
func EncodeStrings(ss []string, c Compression) ([]byte, error) {
	size := 0
	for _, s := range ss {
		size += binary.MaxVarintLen64 + len(s)
	}
	payload := make([]byte, 0, size)
	for _, s := range ss {
		payload = binary.AppendUvarint(payload, uint64(len(s)))
		payload = append(payload, s...)
	}
	return frame(KindStrings, c, len(ss), 0, payload)
}

// DecodeStrings reads a KindStrings artifact.
func DecodeStrings(data []byte) ([]string, error) {
	h, payload, err := unframe(data, KindStrings)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, h.Rows)
	for i := range int(h.Rows) {
		n, k := binary.Uvarint(payload)
		if k <= 0 || uint64(len(payload)-k) < n {
			return nil, fmt.Errorf("%w: string %d", ErrTruncated, i)
		}
		out = append(out, string(payload[k:k+int(n)]))
		payload = payload[k+int(n):]
	}
	if len(payload) != 0 {
		return nil, fmt.Errorf("persistence: %d trailing bytes after %d strings", len(payload), h.Rows)
	}
	return out, nil
}
