// Package storage holds uploaded audio blobs behind a small interface with
// pluggable backends.
//
// # Backends
//
//   - storage/local: local filesystem
//   - storage/s3: Amazon S3 and S3-compatible storage (MinIO)
//
// Backends register themselves in init; import them for side effects:
//
//	import _ "github.com/kbukum/scribe/storage/local"
//
// # Configuration
//
//	storage:
//	  provider: "s3"
//	  bucket: "scribe-audio"
//	  region: "us-east-1"
package storage
