// Package snapshot stores arenas as self-describing binary files.
//
// A snapshot is a fixed little-endian header followed by the codec encoding
// of the arena's wire record, optionally compressed with LZ4 or Zstandard:
//
//	+--------+---------+-------------+-----------+-------+------+
//	| "GAR1" | version | compression | codec[16] | sizes | crc  | id ...
//	+--------+---------+-------------+-----------+-------+------+
//	| payload (StoredSize bytes)                                  |
//	+-------------------------------------------------------------+
//
// The CRC32 covers the stored payload. The header records the codec by name,
// so any reader that knows the codec can decode the payload.
//
// Store keeps numbered versions of named arenas in a blobstore.BlobStore,
// with a CURRENT pointer per name:
//
//	store := snapshot.NewStore(blobstore.NewMemoryStore(),
//	    snapshot.WithStoreCompression(snapshot.CompressionZstd),
//	)
//	info, err := snapshot.Save(ctx, store, "nodes", arena)
//	restored, _, err := snapshot.Load[Node](ctx, store, "nodes")
package snapshot
