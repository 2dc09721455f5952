package plane

const (
	// BlockShift is the number of low bits addressed inside one physical
	// block. A block corresponds to one roaring container (65536 bits).
	BlockShift = 16

	// BlockBits is the number of bits covered by one physical block.
	BlockBits = 1 << BlockShift

	// BlockMask selects the in-block bit offset of an index.
	BlockMask = BlockBits - 1

	// arrayShift splits a block number into coarse and fine coordinates.
	arrayShift = 8
	arrayMask  = 1<<arrayShift - 1
)

// BlockNumber returns the physical block number covering idx.
func BlockNumber(idx uint32) uint32 {
	return idx >> BlockShift
}

// BlockCoords splits the block number of idx into coarse (top-level) and
// fine (sub-block) coordinates.
func BlockCoords(idx uint32) (i, j uint32) {
	nb := BlockNumber(idx)
	return nb >> arrayShift, nb & arrayMask
}

// Block is a resolved physical block of a plane. A missing block is
// all-zero; its Test always returns false without touching the plane.
type Block struct {
	p       *Plane
	nb      uint32
	present bool
}

// Block resolves the physical block at coarse/fine coordinates (i, j).
func (p *Plane) Block(i, j uint32) Block {
	nb := i<<arrayShift | j
	b := Block{p: p, nb: nb}
	if p == nil {
		return b
	}
	lo := nb << BlockShift
	it := p.rb.Iterator()
	it.AdvanceIfNeeded(lo)
	b.present = it.HasNext() && it.PeekNext()>>BlockShift == nb
	return b
}

// Present reports whether the block holds any set bit.
func (b Block) Present() bool {
	return b.present
}

// Number returns the block number.
func (b Block) Number() uint32 {
	return b.nb
}

// Test reports whether bit idx is set. idx must fall inside the block.
func (b Block) Test(idx uint32) bool {
	if !b.present {
		return false
	}
	return b.p.rb.Contains(idx)
}
