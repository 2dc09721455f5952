package plane

// visitBatch is the number of bit indices fetched per iterator call.
const visitBatch = 256

// Visitor receives the set bits of a plane. Contiguous indices are
// delivered as ranges, isolated ones through AddBits.
type Visitor interface {
	// AddBits is called with ascending, non-contiguous bit indices.
	AddBits(bits []uint32)
	// AddRange is called for a run of n consecutive set bits starting at start.
	AddRange(start, n uint32)
}

// VisitRuns traverses all set bits and compacts contiguous runs into
// AddRange calls.
func (p *Plane) VisitRuns(v Visitor) {
	var (
		buf     [visitBatch]uint32
		pending [visitBatch]uint32
	)
	np := 0
	flush := func() {
		if np > 0 {
			v.AddBits(pending[:np])
			np = 0
		}
	}

	runStart, runLen := uint32(0), uint32(0)
	emitRun := func() {
		switch {
		case runLen == 0:
		case runLen == 1:
			pending[np] = runStart
			np++
			if np == visitBatch {
				flush()
			}
		default:
			flush()
			v.AddRange(runStart, runLen)
		}
		runLen = 0
	}

	it := p.rb.ManyIterator()
	for {
		n := it.NextMany(buf[:])
		if n == 0 {
			break
		}
		for _, x := range buf[:n] {
			if runLen > 0 && x == runStart+runLen {
				runLen++
				continue
			}
			emitRun()
			runStart, runLen = x, 1
		}
	}
	emitRun()
	flush()
}
