package sparsevec

import (
	"math/bits"

	"github.com/hupe1980/sparsevec/plane"
)

// Unsigned is the set of value types a Vector can store.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Vector is a bit-transposed sequence of unsigned integers.
//
// Bit j of every element lives in plane j; planes are created on first write
// and an absent plane reads as all-zero. A NULL-aware vector keeps one more
// plane at index ValueBits() in which a set bit means "assigned".
//
// A Vector is not safe for concurrent mutation. Concurrent readers are safe
// while no writer is active.
type Vector[T Unsigned] struct {
	planes    []*plane.Plane
	size      uint32
	bound     uint32
	effective int

	maskPool *plane.Pool
	logger   *Logger
	metrics  MetricsCollector
}

// New creates an empty vector.
func New[T Unsigned](optFns ...Option) *Vector[T] {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.bound == 0 {
		opts.bound = plane.MaxSize
	}

	v := &Vector[T]{
		planes:   make([]*plane.Plane, valueBits[T]()+1),
		bound:    opts.bound,
		maskPool: opts.maskPool,
		logger:   opts.logger,
		metrics:  opts.metricsCollector,
	}
	if opts.nullable {
		v.planes[v.nullIndex()] = plane.New(v.bound)
	}
	return v
}

func valueBits[T Unsigned]() int {
	return bits.Len64(uint64(^T(0)))
}

func (v *Vector[T]) nullIndex() int {
	return len(v.planes) - 1
}

// ValueBits returns the bit width of T, which is the number of value planes.
func (v *Vector[T]) ValueBits() int {
	return len(v.planes) - 1
}

// StoredPlanes returns the number of plane slots including the NULL plane.
func (v *Vector[T]) StoredPlanes() int {
	return len(v.planes)
}

// EffectivePlanes returns the watermark plus one: every value plane that has
// ever been materialized has an index below it.
func (v *Vector[T]) EffectivePlanes() int {
	return v.effective + 1
}

// Bound returns the per-plane size hint.
func (v *Vector[T]) Bound() uint32 {
	return v.bound
}

// IsNullable reports whether the vector tracks assignment.
func (v *Vector[T]) IsNullable() bool {
	return v.planes[v.nullIndex()] != nil
}

// NullPlane returns the assignment plane, or nil for a vector without NULL
// support.
func (v *Vector[T]) NullPlane() *plane.Plane {
	return v.planes[v.nullIndex()]
}

// Size returns the logical number of elements.
func (v *Vector[T]) Size() uint32 {
	return v.size
}

// Empty reports whether the vector has no elements.
func (v *Vector[T]) Empty() bool {
	return v.size == 0
}

// GetPlane returns plane j, creating it if absent. Creating a value plane
// raises the watermark; index ValueBits() addresses the NULL plane.
func (v *Vector[T]) GetPlane(j int) *plane.Plane {
	if p := v.planes[j]; p != nil {
		return p
	}
	p := plane.New(v.bound)
	v.planes[j] = p
	if j > v.effective && j < v.ValueBits() {
		v.effective = j
	}
	return p
}

// AttachPlane installs p as plane j, replacing any previous plane. Like
// GetPlane, attaching a value plane raises the watermark.
func (v *Vector[T]) AttachPlane(j int, p *plane.Plane) {
	v.planes[j] = p
	if p != nil && j > v.effective && j < v.ValueBits() {
		v.effective = j
	}
}

// Plane returns plane j without creating it. The result may be nil.
func (v *Vector[T]) Plane(j int) *plane.Plane {
	return v.planes[j]
}

// FreePlane drops plane j. The caller must not hold references into it.
func (v *Vector[T]) FreePlane(j int) {
	v.planes[j] = nil
}

// SetMaskPool attaches a pool for transient decode masks. nil detaches it.
func (v *Vector[T]) SetMaskPool(p *plane.Pool) {
	v.maskPool = p
}

// Clear drops every value plane, empties the NULL plane and sets the size
// to zero.
func (v *Vector[T]) Clear() {
	v.logger.LogClear(v.size)
	for j := 0; j < v.ValueBits(); j++ {
		v.planes[j] = nil
	}
	if p := v.NullPlane(); p != nil {
		p.Reset()
	}
	v.size = 0
	v.effective = 0
}

// Resize sets the logical size. Shrinking clears the truncated tail and marks
// it NULL; growing appends NULL elements. Resize(0) is a full Clear.
func (v *Vector[T]) Resize(sz uint32) {
	switch {
	case sz == v.size:
		return
	case sz == 0:
		v.Clear()
		return
	case sz < v.size:
		v.ClearRange(sz, v.size-1, true)
	}
	v.size = sz
}

// Clone returns a deep copy of the vector.
func (v *Vector[T]) Clone() *Vector[T] {
	c := &Vector[T]{
		planes:   make([]*plane.Plane, len(v.planes)),
		maskPool: v.maskPool,
		logger:   v.logger,
		metrics:  v.metrics,
	}
	c.CopyFrom(v)
	return c
}

// CopyFrom replaces the content of v with a deep copy of src.
func (v *Vector[T]) CopyFrom(src *Vector[T]) {
	if v == src {
		return
	}
	for j, p := range src.planes {
		if p == nil {
			v.planes[j] = nil
			continue
		}
		v.planes[j] = p.Clone()
	}
	v.size = src.size
	v.bound = src.bound
	v.effective = src.effective
}

// Move transfers the planes of v into a new vector and leaves v empty.
// A NULL-aware v stays NULL-aware with an empty NULL plane.
func (v *Vector[T]) Move() *Vector[T] {
	m := &Vector[T]{
		planes:    v.planes,
		size:      v.size,
		bound:     v.bound,
		effective: v.effective,
		maskPool:  v.maskPool,
		logger:    v.logger,
		metrics:   v.metrics,
	}
	v.planes = make([]*plane.Plane, len(m.planes))
	if m.IsNullable() {
		v.planes[v.nullIndex()] = plane.New(v.bound)
	}
	v.size = 0
	v.effective = 0
	return m
}

// Swap exchanges the content of v and other without copying planes.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.planes, other.planes = other.planes, v.planes
	v.size, other.size = other.size, v.size
	v.bound, other.bound = other.bound, v.bound
	v.effective, other.effective = other.effective, v.effective
}
