package sparsevec

import "github.com/hupe1980/sparsevec/plane"

// Statistics summarizes the memory layout of a vector.
type Statistics struct {
	// BitBlocks is the number of plain bitmap blocks.
	BitBlocks uint64
	// GapBlocks is the number of run-length encoded blocks.
	GapBlocks uint64
	// ArrayBlocks is the number of sorted-array blocks.
	ArrayBlocks uint64
	// MemoryUsed is the in-memory size in bytes.
	MemoryUsed uint64
	// MaxSerializeMem is the worst-case serialized size in bytes.
	MaxSerializeMem uint64
}

const (
	// planeOverhead is the serialized per-plane overhead in bytes.
	planeOverhead = 8
	// headerOverhead is the fixed serialized container header in bytes,
	// not counting the per-slot offsets.
	headerOverhead = 1 + 1 + 1 + 1 + 8
)

func (s *Statistics) addPlane(ps plane.Stats) {
	s.BitBlocks += ps.BitBlocks
	s.GapBlocks += ps.GapBlocks
	s.ArrayBlocks += ps.ArrayBlocks
	s.MemoryUsed += ps.MemoryUsed
	s.MaxSerializeMem += ps.MaxSerializeMem + planeOverhead
}
