package persistence

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cmhash/internal/hash"
)

// Checksum computes the CRC32C checksum of data.
//
// Note: CRC32C is NOT cryptographically secure. It detects accidental
// corruption only.
func Checksum(data []byte) uint32 {
	return hash.CRC32C(data)
}

// VerifyChecksum checks data against the expected checksum.
func VerifyChecksum(data []byte, expected uint32) error {
	if actual := Checksum(data); actual != expected {
		return &ChecksumMismatchError{
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// IsChecksumMismatch returns true if err is or wraps a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}
