// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	in, err := dataset.Load(ctx, store, "sift.parquet")
//
// # Features
//
//   - Range reads, so Parquet and Arrow footers are fetched without
//     downloading the whole object
//   - Multipart uploads for large graph exports
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
