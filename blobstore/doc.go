// Package blobstore provides the storage abstraction used to read input
// datasets and write exported graphs.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Readers that expect an io.ReaderAt (Parquet, Arrow IPC) get one from
// NewReaderAt; sequential readers use NewReader.
package blobstore
