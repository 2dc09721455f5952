package sparsevec

import (
	"iter"
	"math"

	"github.com/hupe1980/sparsevec/plane"
)

// IteratorBufferSize is the number of elements an Iterator decodes at once.
const IteratorBufferSize = 8192

// invalidPos marks an iterator positioned past the end.
const invalidPos = math.MaxUint32

// Iterator is a forward cursor over [0, Size()). Values are decoded one
// window at a time into an internal buffer on first access after each
// reposition.
//
// An Iterator borrows its vector; mutating the vector while iterating leaves
// buffered values stale.
type Iterator[T Unsigned] struct {
	v      *Vector[T]
	pos    uint32
	buf    []T
	bufPos int
	filled bool
	pool   *plane.Pool
}

// Begin returns an iterator at the first element.
func (v *Vector[T]) Begin() *Iterator[T] {
	return v.IteratorAt(0)
}

// End returns the past-the-end iterator.
func (v *Vector[T]) End() *Iterator[T] {
	return &Iterator[T]{v: v, pos: invalidPos}
}

// IteratorAt returns an iterator at pos; pos >= Size() yields End().
func (v *Vector[T]) IteratorAt(pos uint32) *Iterator[T] {
	it := &Iterator[T]{v: v}
	it.GoTo(pos)
	return it
}

// All returns an iterator over (index, value) pairs in index order.
func (v *Vector[T]) All() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		for it := v.Begin(); it.Valid(); it.Advance() {
			if !yield(it.Pos(), it.Value()) {
				return
			}
		}
	}
}

// Valid reports whether the iterator points at an element.
func (it *Iterator[T]) Valid() bool {
	return it.pos != invalidPos
}

// Pos returns the current index, or math.MaxUint32 past the end.
func (it *Iterator[T]) Pos() uint32 {
	return it.pos
}

// GoTo repositions the iterator and drops the decode buffer.
func (it *Iterator[T]) GoTo(pos uint32) {
	if it.v == nil || pos >= it.v.size {
		pos = invalidPos
	}
	it.pos = pos
	it.filled = false
}

// Invalidate moves the iterator past the end.
func (it *Iterator[T]) Invalidate() {
	it.pos = invalidPos
	it.filled = false
}

// Advance moves to the next element.
func (it *Iterator[T]) Advance() {
	if it.pos == invalidPos {
		return
	}
	it.pos++
	if it.pos >= it.v.size {
		it.pos = invalidPos
		return
	}
	if it.filled {
		it.bufPos++
		if it.bufPos >= len(it.buf) {
			it.filled = false
		}
	}
}

// Value returns the element at the current position, or zero when the
// iterator is not valid.
func (it *Iterator[T]) Value() T {
	if !it.Valid() {
		return 0
	}
	if !it.filled {
		it.fill()
	}
	return it.buf[it.bufPos]
}

func (it *Iterator[T]) fill() {
	if it.buf == nil {
		it.buf = make([]T, IteratorBufferSize)
	}
	pool := it.v.maskPool
	if pool == nil {
		if it.pool == nil {
			it.pool = plane.NewPool(it.v.bound)
		}
		pool = it.pool
	}
	clear(it.buf)
	it.v.decodeMasked(it.buf, it.pos, it.v.windowEnd(it.pos, len(it.buf)), pool)
	it.bufPos = 0
	it.filled = true
}

// IsNull reports whether the current element is unassigned. It reads the
// vector directly and ignores the buffer.
func (it *Iterator[T]) IsNull() bool {
	if !it.Valid() {
		return false
	}
	null, _ := it.v.IsNull(it.pos)
	return null
}

// Equal reports whether both iterators share a vector and a position.
func (it *Iterator[T]) Equal(other *Iterator[T]) bool {
	return it.v == other.v && it.pos == other.pos
}

// Less reports whether it is positioned before other.
func (it *Iterator[T]) Less(other *Iterator[T]) bool {
	return it.pos < other.pos
}
