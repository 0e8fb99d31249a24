// Package persistence serializes the artifacts of a training run.
//
// Every artifact is a framed blob: a fixed 32-byte header followed by an
// optionally compressed payload.
//
//	offset  size  field
//	0       4     magic ("CMH1")
//	4       2     format version
//	6       1     kind (codes, labels, strings, checkpoint)
//	7       1     compression (none, lz4, zstd)
//	8       4     rows
//	12      4     cols (bits per code, label dimension)
//	16      8     raw payload size
//	24      4     stored payload size
//	28      4     CRC32C of the raw payload
//
// All integers are little-endian. Code payloads are the packed uint64 words of
// each row; string payloads are uvarint length-prefixed; checkpoint payloads
// are codec-encoded.
//
// A Snapshotter writes and reads the full artifact set of a run through a
// blobstore.BlobStore.
package persistence
