// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "runs/", "eu-central-1")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - CRC32C-checked single-request uploads for small artifacts
//   - Multipart uploads for large checkpoints
//   - Automatic pagination for listing
package s3
