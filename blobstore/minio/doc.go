// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Dial(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "sparsevec",
//	    Prefix:    "vectors/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo := snapshot.NewRepository(store)
package minio
