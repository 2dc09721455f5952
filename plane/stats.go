package plane

// OptMode selects the depth of plane compaction.
type OptMode uint8

const (
	// OptNone only collects statistics.
	OptNone OptMode = iota
	// OptCompress converts containers to run-length encoding where it
	// saves memory.
	OptCompress
)

// String returns the string representation of an OptMode.
func (m OptMode) String() string {
	switch m {
	case OptNone:
		return "none"
	case OptCompress:
		return "compress"
	default:
		return "unknown"
	}
}

// Stats describes the memory layout of a plane.
type Stats struct {
	// BitBlocks is the number of plain bitmap containers.
	BitBlocks uint64
	// GapBlocks is the number of run-length encoded containers.
	GapBlocks uint64
	// ArrayBlocks is the number of sorted-array containers.
	ArrayBlocks uint64
	// MemoryUsed is the in-memory size in bytes.
	MemoryUsed uint64
	// MaxSerializeMem is the serialized size in bytes.
	MaxSerializeMem uint64
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.BitBlocks += other.BitBlocks
	s.GapBlocks += other.GapBlocks
	s.ArrayBlocks += other.ArrayBlocks
	s.MemoryUsed += other.MemoryUsed
	s.MaxSerializeMem += other.MaxSerializeMem
}

// CalcStat computes the current statistics of the plane.
func (p *Plane) CalcStat() Stats {
	rs := p.rb.Stats()
	return Stats{
		BitBlocks:       rs.BitmapContainers,
		GapBlocks:       rs.RunContainers,
		ArrayBlocks:     rs.ArrayContainers,
		MemoryUsed:      p.rb.GetSizeInBytes(),
		MaxSerializeMem: p.rb.GetSerializedSizeInBytes(),
	}
}

// Optimize compacts the plane according to mode and returns its statistics
// after compaction.
func (p *Plane) Optimize(mode OptMode) Stats {
	if mode == OptCompress {
		p.rb.RunOptimize()
	}
	return p.CalcStat()
}

// OptimizeGapSize runs run-length compaction on the plane.
func (p *Plane) OptimizeGapSize() {
	p.rb.RunOptimize()
}
