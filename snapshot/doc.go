// Package snapshot serializes sparse vectors and keeps versioned copies of
// them in a blob store.
//
// A snapshot is a fixed header followed by one entry per materialized
// plane; each entry carries the plane index, a CRC32 of the raw roaring
// payload and a (optionally LZ4 or ZSTD compressed) block. Absent planes are
// not written and decode as absent, so the effective-plane watermark
// survives a round trip.
//
//	data, err := snapshot.Encode(ctx, v, snapshot.WithCompression(snapshot.CompressionZSTD))
//	w, err := snapshot.Decode[uint32](ctx, data)
//
// Repository adds naming and versioning on top of any blobstore.BlobStore:
//
//	repo := snapshot.NewRepository(blobstore.NewLocalStore(dir))
//	version, err := snapshot.Save(ctx, repo, "clicks", v)
//	latest, err := snapshot.Load[uint32](ctx, repo, "clicks")
package snapshot
