package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/cmhash/codec"
)

// Checkpoint is the trainable state of the best epoch of a run.
type Checkpoint struct {
	Run         string  `json:"run"`
	Epoch       int     `json:"epoch"`
	BestScore   float64 `json:"best_score"`
	Bits        int     `json:"bits"`
	EncoderS1   []byte  `json:"encoder_s1"`
	EncoderS2   []byte  `json:"encoder_s2"`
	OptimizerS1 []byte  `json:"optimizer_s1"`
	OptimizerS2 []byte  `json:"optimizer_s2"`
}

// EncodeCheckpoint encodes cp with c (codec.Default when nil) and frames it
// as a zstd-compressed KindCheckpoint artifact. The codec name is stored in
// front of the encoded body.
func EncodeCheckpoint(cp Checkpoint, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	body, err := c.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}

	name := c.Name()
	payload := make([]byte, 0, binary.MaxVarintLen64+len(name)+len(body))
	payload = binary.AppendUvarint(payload, uint64(len(name)))
	payload = append(payload, name...)
	payload = append(payload, body...)

	return frame(KindCheckpoint, CompressionZSTD, 1, 0, payload)
}

// DecodeCheckpoint reads a KindCheckpoint artifact.
func DecodeCheckpoint(data []byte) (Checkpoint, error) {
	_, payload, err := unframe(data, KindCheckpoint)
	if err != nil {
		return Checkpoint{}, err
	}

	n, k := binary.Uvarint(payload)
	if k <= 0 || uint64(len(payload)-k) < n {
		return Checkpoint{}, fmt.Errorf("%w: codec name", ErrTruncated)
	}
	name := string(payload[k : k+int(n)])
	c, ok := codec.ByName(name)
	if !ok {
		return Checkpoint{}, fmt.Errorf("persistence: unknown checkpoint codec %q", name)
	}

	var cp Checkpoint
	if err := c.Unmarshal(payload[k+int(n):], &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return cp, nil
}
