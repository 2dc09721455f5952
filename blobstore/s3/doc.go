// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("vectors/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	repo := snapshot.NewRepository(store)
//
// For concurrent writers, wrap the store in a DDBCommitStore so that
// CURRENT pointer updates become conditional DynamoDB writes:
//
//	repo := snapshot.NewRepository(s3.NewDDBCommitStore(store, ddb, "commits", "s3://my-bucket/vectors"))
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
