// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface, used to share a search run's index chunk files, manifest,
// and checkpoint resume log across every participating node.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "gicops-runs/run-42/")
//
//	blob, err := store.Open(ctx, "manifest.json")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large segments
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
