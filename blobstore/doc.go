// Package blobstore provides the storage abstraction for vector snapshots.
//
// BlobStore reads and writes immutable named blobs. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem with atomic writes and mmap reads
//   - s3.Store: Amazon S3 with ranged reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Missing blobs must satisfy errors.Is(err, ErrNotFound).
package blobstore
