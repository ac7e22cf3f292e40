// Package storage provides an abstraction layer for the object storage that holds
// source texture images.
//
// It wraps the MinIO Go client, so both AWS S3 and self-hosted MinIO instances work.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the texture bucket.
//   - GetObject: Streams an encoded image for decoding.
//   - StatObject: Reads size and content type without a download.
//   - ListObjects: Lists images under a prefix.
//   - PutObject: Stores encoded mip dumps.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "textures")
package storage
