// Package sparsevec provides a bit-transposed, compressible container for
// sequences of fixed-width unsigned integers.
//
// Each element is split into its bits and bit position j of every element is
// stored in its own compressible bit-set (a plane, see package plane). Real
// integer columns rarely use their full declared width, so most high-order
// planes are never created, and long runs compress well.
//
// # Quick Start
//
//	v := sparsevec.New[uint32](sparsevec.WithNullSupport())
//	v.PushBack(7)
//	v.Set(10, 255)
//
//	x, err := v.At(10) // 255
//	null, _ := v.IsNull(5) // true: never assigned
//
// # Bulk Access
//
// Import loads a batch through a transposition accumulator and is much
// faster than repeated Set calls:
//
//	err := v.Import(values, 0)
//
// Decode reconstructs a window of values. The algorithm is chosen by window
// size: a block probe below 32 elements, a per-plane enumerator below 1024
// and a masked bulk intersection above. All three return identical results.
//
//	buf := make([]uint32, 4096)
//	n := v.Decode(buf, 0, true)
//
// Iteration goes through a buffered cursor:
//
//	for i, x := range v.All() {
//		...
//	}
//
// # NULL Support
//
// A vector created WithNullSupport keeps an extra plane in which a set bit
// means "assigned". Elements start out NULL and become assigned on Set,
// PushBack, Inc or Import; SetNull reverses that.
//
// # Persistence
//
// The container has no wire format of its own. Package snapshot encodes
// vectors and stores them in a blobstore.BlobStore; package columnar converts
// to and from Apache Arrow and Parquet.
//
// # Concurrency
//
// A Vector is single-writer with no internal locking. Distinct vectors share
// no state.
package sparsevec
