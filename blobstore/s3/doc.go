// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("arenas/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	snaps := snapshot.NewStore(store)
//	info, err := snaps.Save(ctx, "nodes", arena)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large snapshots
//   - CRC32C integrity checks on Put
//   - Automatic pagination for listing
//   - Optional DynamoDB-backed CURRENT pointers (DDBCommitStore)
package s3
