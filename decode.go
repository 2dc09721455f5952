package sparsevec

import (
	"time"

	"github.com/hupe1980/sparsevec/plane"
)

// DecodeStrategy identifies one of the window decoding algorithms.
type DecodeStrategy uint8

const (
	// StrategyBlockProbe tests bits one by one inside resolved physical
	// blocks. Used for windows below 32 elements.
	StrategyBlockProbe DecodeStrategy = iota
	// StrategyEnumerator walks each present plane from the window start.
	// Used for windows below 1024 elements.
	StrategyEnumerator
	// StrategyMasked intersects each plane with a window mask and visits
	// the result with run compaction.
	StrategyMasked

	numDecodeStrategies
)

const (
	blockProbeLimit = 32
	enumeratorLimit = 1024
)

// String returns the string representation of a DecodeStrategy.
func (s DecodeStrategy) String() string {
	switch s {
	case StrategyBlockProbe:
		return "block_probe"
	case StrategyEnumerator:
		return "enumerator"
	case StrategyMasked:
		return "masked"
	default:
		return "unknown"
	}
}

// StrategyFor returns the strategy Decode uses for a window of count
// elements.
func StrategyFor(count int) DecodeStrategy {
	switch {
	case count < blockProbeLimit:
		return StrategyBlockProbe
	case count < enumeratorLimit:
		return StrategyEnumerator
	default:
		return StrategyMasked
	}
}

// Decode reconstructs the values of the window [from, from+len(dst)) into
// dst and returns the number of elements decoded, which is clamped to
// Size(). Unless zeroFill is false, dst is zeroed first; pass false only when
// dst is already zero.
func (v *Vector[T]) Decode(dst []T, from uint32, zeroFill bool) uint32 {
	return v.DecodeWith(StrategyFor(len(dst)), dst, from, zeroFill)
}

// DecodeWith is Decode with an explicit strategy. All strategies produce
// identical results.
func (v *Vector[T]) DecodeWith(s DecodeStrategy, dst []T, from uint32, zeroFill bool) uint32 {
	if len(dst) == 0 {
		return 0
	}
	if zeroFill {
		clear(dst)
	}
	if from >= v.size {
		return 0
	}
	end := v.windowEnd(from, len(dst))

	start := time.Now()
	switch s {
	case StrategyBlockProbe:
		v.decodeBlockProbe(dst, from, end)
	case StrategyEnumerator:
		v.decodeEnumerator(dst, from, end)
	default:
		s = StrategyMasked
		v.decodeMasked(dst, from, end, v.maskPool)
	}
	n := end - from
	v.metrics.RecordDecode(s, int(n), time.Since(start))
	return n
}

// windowEnd returns the exclusive end of a window clamped to the size.
func (v *Vector[T]) windowEnd(from uint32, count int) uint32 {
	end := uint64(from) + uint64(count)
	if end > uint64(v.size) {
		return v.size
	}
	return uint32(end)
}

func (v *Vector[T]) decodeBlockProbe(dst []T, from, end uint32) {
	for j := 0; j < v.ValueBits(); j++ {
		p := v.planes[j]
		if p == nil {
			continue
		}
		mask := T(1) << j
		nb := plane.BlockNumber(from)
		i0, j0 := plane.BlockCoords(from)
		blk := p.Block(i0, j0)
		for k := from; k < end; k++ {
			if nb1 := plane.BlockNumber(k); nb1 != nb {
				nb = nb1
				i0, j0 = plane.BlockCoords(k)
				blk = p.Block(i0, j0)
			}
			if blk.Test(k) {
				dst[k-from] |= mask
			}
		}
	}
}

func (v *Vector[T]) decodeEnumerator(dst []T, from, end uint32) {
	for j := 0; j < v.ValueBits(); j++ {
		p := v.planes[j]
		if p == nil {
			continue
		}
		mask := T(1) << j
		for en := p.Enumerator(from); en.Valid(); en.Next() {
			idx := en.Value()
			if idx >= end {
				break
			}
			dst[idx-from] |= mask
		}
	}
}

func (v *Vector[T]) decodeMasked(dst []T, from, end uint32, pool *plane.Pool) {
	if from == 0 && uint64(len(dst)) == uint64(v.size) {
		for j := 0; j < v.ValueBits(); j++ {
			if p := v.planes[j]; p != nil {
				p.VisitRuns(&decodeVisitor[T]{dst: dst, mask: T(1) << j})
			}
		}
		return
	}

	m := pool.Get()
	defer pool.Put(m)
	for j := 0; j < v.ValueBits(); j++ {
		p := v.planes[j]
		if p == nil {
			continue
		}
		m.SetRange(from, end-1, true)
		m.And(p)
		m.VisitRuns(&decodeVisitor[T]{dst: dst, mask: T(1) << j, off: from})
		m.Reset()
	}
}

// decodeVisitor ORs a plane mask into the output slots of visited bits.
type decodeVisitor[T Unsigned] struct {
	dst  []T
	mask T
	off  uint32
}

func (d *decodeVisitor[T]) AddBits(bits []uint32) {
	for _, b := range bits {
		d.dst[b-d.off] |= d.mask
	}
}

func (d *decodeVisitor[T]) AddRange(start, n uint32) {
	out := d.dst[start-d.off : start-d.off+n]
	for i := range out {
		out[i] |= d.mask
	}
}
