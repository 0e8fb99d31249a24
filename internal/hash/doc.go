// Package hash provides the CRC32-Castagnoli (CRC32C) checksum used for
// artifact integrity.
//
// The same polynomial is used for the artifact headers written by the
// persistence package and for the S3 upload checksums, so a blob can be
// verified end to end.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
