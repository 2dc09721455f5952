package plane

import "github.com/RoaringBitmap/roaring/v2"

// Enumerator walks the set bits of a plane in ascending order.
// It can be restarted from any position with GoTo.
type Enumerator struct {
	p     *Plane
	it    roaring.IntPeekable
	cur   uint32
	valid bool
}

// Enumerator returns a forward enumerator positioned at the first set bit
// that is >= from.
func (p *Plane) Enumerator(from uint32) *Enumerator {
	e := &Enumerator{p: p}
	e.GoTo(from)
	return e
}

// GoTo repositions the enumerator at the first set bit >= pos.
func (e *Enumerator) GoTo(pos uint32) {
	e.it = e.p.rb.Iterator()
	e.it.AdvanceIfNeeded(pos)
	e.Next()
}

// Valid reports whether the enumerator points at a set bit.
func (e *Enumerator) Valid() bool {
	return e.valid
}

// Value returns the current bit index.
func (e *Enumerator) Value() uint32 {
	return e.cur
}

// Next advances to the following set bit.
func (e *Enumerator) Next() {
	if !e.it.HasNext() {
		e.valid = false
		return
	}
	e.cur = e.it.Next()
	e.valid = true
}
