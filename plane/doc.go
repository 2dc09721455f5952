// Package plane provides the compressible bit-set used to store one bit
// position of a bit-transposed integer column.
//
// A Plane wraps a roaring bitmap and exposes the capability set needed by
// the sparse vector:
//
//   - single bit test/set/clear and ranged set/clear
//   - a restartable forward Enumerator
//   - bulk loading of sorted index lists (AddSorted)
//   - logical AND/OR and three-way comparison
//   - run-compacted traversal (VisitRuns)
//   - increment-with-carry (Inc) for counter columns
//   - physical block lookup by coarse/fine coordinates (Block)
//   - compaction and memory statistics (Optimize, CalcStat)
//
// Physical blocks map to roaring containers: each one addresses 65536
// consecutive bits. BlockCoords splits a block number into a coarse and a
// fine coordinate the same way a two-level block table would.
//
// Pool recycles transient planes used as masks in bulk decoding.
package plane
