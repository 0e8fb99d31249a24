package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies cmhash artifact files (ASCII: "CMH1").
	MagicNumber = 0x31484d43
	// Version is the current artifact format version.
	Version = 1

	headerSize = 32
)

// Kind identifies the payload layout of an artifact.
type Kind uint8

const (
	KindCodes      Kind = 1
	KindLabels     Kind = 2
	KindStrings    Kind = 3
	KindCheckpoint Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindCodes:
		return "codes"
	case KindLabels:
		return "labels"
	case KindStrings:
		return "strings"
	case KindCheckpoint:
		return "checkpoint"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrInvalidKind    = errors.New("unexpected artifact kind")
	ErrTruncated      = errors.New("artifact truncated")
)

// FileHeader is the 32-byte header at the start of every artifact.
type FileHeader struct {
	Magic       uint32
	Version     uint16
	Kind        Kind
	Compression Compression
	Rows        uint32
	Cols        uint32
	RawSize     uint64
	StoredSize  uint32
	Checksum    uint32
}

func (h *FileHeader) marshal() []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize)
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

func readHeader(data []byte) (*FileHeader, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d for header", ErrTruncated, len(data), headerSize)
	}
	var h FileHeader
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}
	return &h, nil
}

// frame compresses payload and prepends the header.
func frame(kind Kind, c Compression, rows, cols int, payload []byte) ([]byte, error) {
	stored, used, err := compress(payload, c)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", kind, err)
	}
	h := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Kind:        kind,
		Compression: used,
		Rows:        uint32(rows),
		Cols:        uint32(cols),
		RawSize:     uint64(len(payload)),
		StoredSize:  uint32(len(stored)),
		Checksum:    Checksum(payload),
	}
	out := make([]byte, 0, headerSize+len(stored))
	out = append(out, h.marshal()...)
	return append(out, stored...), nil
}

// unframe validates the header, decompresses and verifies the payload.
func unframe(data []byte, want Kind) (*FileHeader, []byte, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, nil, err
	}
	if h.Kind != want {
		return nil, nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidKind, h.Kind, want)
	}
	body := data[headerSize:]
	if uint64(len(body)) < uint64(h.StoredSize) {
		return nil, nil, fmt.Errorf("%w: payload %d bytes, header says %d", ErrTruncated, len(body), h.StoredSize)
	}
	payload, err := decompress(body[:h.StoredSize], h.Compression, h.RawSize)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress %s: %w", h.Kind, err)
	}
	if err := VerifyChecksum(payload, h.Checksum); err != nil {
		return nil, nil, err
	}
	return h, payload, nil
}
