package plane

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// MaxSize is the default upper bound of addressable bits in a plane.
const MaxSize = math.MaxUint32

// Plane is a compressible bit-set holding one bit position of a
// bit-transposed integer column.
// It wraps the official roaring implementation.
type Plane struct {
	rb    *roaring.Bitmap
	bound uint32
}

// New creates a new empty plane. bound is the declared maximum number of
// addressable bits; it is an allocation hint and is not enforced.
func New(bound uint32) *Plane {
	if bound == 0 {
		bound = MaxSize
	}
	return &Plane{
		rb:    roaring.New(),
		bound: bound,
	}
}

// Bound returns the declared maximum size of the plane.
func (p *Plane) Bound() uint32 {
	return p.bound
}

// Test reports whether bit idx is set.
func (p *Plane) Test(idx uint32) bool {
	return p.rb.Contains(idx)
}

// Set sets bit idx.
func (p *Plane) Set(idx uint32) {
	p.rb.Add(idx)
}

// Clear clears bit idx.
func (p *Plane) Clear(idx uint32) {
	p.rb.Remove(idx)
}

// SetBit assigns bit idx to value.
func (p *Plane) SetBit(idx uint32, value bool) {
	if value {
		p.rb.Add(idx)
		return
	}
	p.rb.Remove(idx)
}

// SetRange assigns every bit of the closed interval [left, right] to value.
func (p *Plane) SetRange(left, right uint32, value bool) {
	if right < left {
		left, right = right, left
	}
	if value {
		p.rb.AddRange(uint64(left), uint64(right)+1)
		return
	}
	p.rb.RemoveRange(uint64(left), uint64(right)+1)
}

// AddSorted ORs an ascending list of bit indices into the plane in one call.
func (p *Plane) AddSorted(sorted []uint32) {
	if len(sorted) == 0 {
		return
	}
	p.rb.AddMany(sorted)
}

// Inc treats bit idx as one digit of a binary counter and increments it.
// It returns true when the increment carries over into the next plane.
func (p *Plane) Inc(idx uint32) bool {
	if p.rb.CheckedRemove(idx) {
		return true
	}
	p.rb.Add(idx)
	return false
}

// Any returns true if at least one bit is set.
func (p *Plane) Any() bool {
	return !p.rb.IsEmpty()
}

// Cardinality returns the number of set bits.
func (p *Plane) Cardinality() uint64 {
	return p.rb.GetCardinality()
}

// And computes the intersection of two planes in place.
func (p *Plane) And(other *Plane) {
	p.rb.And(other.rb)
}

// Or computes the union of two planes in place.
func (p *Plane) Or(other *Plane) {
	p.rb.Or(other.rb)
}

// Compare performs a three-way content comparison. Planes are compared as
// bit strings: at the first index where they differ, the plane that has the
// bit set is the greater one.
func (p *Plane) Compare(other *Plane) int {
	if p == other {
		return 0
	}
	a := p.rb.Iterator()
	b := other.rb.Iterator()
	for a.HasNext() && b.HasNext() {
		x, y := a.Next(), b.Next()
		switch {
		case x < y:
			return 1
		case x > y:
			return -1
		}
	}
	switch {
	case a.HasNext():
		return 1
	case b.HasNext():
		return -1
	}
	return 0
}

// Equal reports whether both planes hold the same bits.
func (p *Plane) Equal(other *Plane) bool {
	return p.rb.Equals(other.rb)
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	return &Plane{
		rb:    p.rb.Clone(),
		bound: p.bound,
	}
}

// Reset removes all bits from the plane.
func (p *Plane) Reset() {
	p.rb.Clear()
}

// Bits returns an iterator over the set bits in ascending order.
func (p *Plane) Bits() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := p.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToArray returns the set bits as an ascending slice.
func (p *Plane) ToArray() []uint32 {
	return p.rb.ToArray()
}

// GetSizeInBytes returns the in-memory size of the plane in bytes.
func (p *Plane) GetSizeInBytes() uint64 {
	return p.rb.GetSizeInBytes()
}

// MarshalBinary encodes the plane in the portable roaring format.
func (p *Plane) MarshalBinary() ([]byte, error) {
	return p.rb.ToBytes()
}

// UnmarshalBinary replaces the plane content with a portable roaring payload.
func (p *Plane) UnmarshalBinary(data []byte) error {
	rb := roaring.New()
	if err := rb.UnmarshalBinary(data); err != nil {
		return err
	}
	p.rb = rb
	return nil
}
