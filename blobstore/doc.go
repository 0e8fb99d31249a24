// Package blobstore provides the storage abstraction for run artifacts.
//
// A training run persists its best checkpoint, the validation codes and labels
// and the patch names through a BlobStore. Names are slash-separated paths
// such as "checkpoints/<run>_checkpoint.ckpt".
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with atomic writes and mmap reads
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
