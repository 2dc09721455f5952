package sparsevec

import (
	"time"

	"github.com/hupe1980/sparsevec/plane"
)

// NullSupport selects whether Equal compares assignment state.
type NullSupport uint8

const (
	// NoNull compares values only.
	NoNull NullSupport = iota
	// UseNull also compares the NULL planes.
	UseNull
)

// Join merges other into v with a bitwise OR of every plane. The size grows
// to other's size. If v is NULL-aware and other is not, every element of
// other counts as assigned.
func (v *Vector[T]) Join(other *Vector[T]) {
	argSize := other.size
	if v.size < argSize {
		v.Resize(argSize)
	}

	n := v.ValueBits()
	nullPlane := v.NullPlane()
	if nullPlane != nil {
		n = v.StoredPlanes()
	}
	for j := 0; j < n; j++ {
		if src := other.planes[j]; src != nil {
			v.GetPlane(j).Or(src)
		}
	}

	if nullPlane != nil && !other.IsNullable() && argSize > 0 {
		nullPlane.SetRange(0, argSize-1, true)
	}
}

// Equal reports whether v and other hold the same values. Sizes must match.
// An absent value plane equals an empty one. With UseNull the assignment
// state is compared too; a vector without NULL support counts as fully
// assigned.
func (v *Vector[T]) Equal(other *Vector[T], ns NullSupport) bool {
	if v.size != other.size {
		return false
	}
	for j := 0; j < v.ValueBits(); j++ {
		if !planesEqual(v.planes[j], other.planes[j]) {
			return false
		}
	}
	if ns == UseNull {
		return nullPlanesEqual(v.NullPlane(), other.NullPlane(), v.size)
	}
	return true
}

func nullPlanesEqual(a, b *plane.Plane, size uint32) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return fullyAssigned(b, size)
	case b == nil:
		return fullyAssigned(a, size)
	default:
		return a.Compare(b) == 0
	}
}

// fullyAssigned reports whether p holds exactly [0, size).
func fullyAssigned(p *plane.Plane, size uint32) bool {
	if size == 0 {
		return !p.Any()
	}
	if p.Cardinality() != uint64(size) {
		return false
	}
	full := plane.New(p.Bound())
	full.SetRange(0, size-1, true)
	return p.Compare(full) == 0
}

func planesEqual(a, b *plane.Plane) bool {
	switch {
	case a == b:
		return true
	case a == nil:
		return !b.Any()
	case b == nil:
		return !a.Any()
	default:
		return a.Compare(b) == 0
	}
}

// Optimize frees empty value planes and compacts the remaining ones
// according to mode. It returns the statistics of the kept planes. The NULL
// plane is never freed.
func (v *Vector[T]) Optimize(mode plane.OptMode) Statistics {
	start := time.Now()
	var st Statistics
	freed := 0
	nullPlane := v.NullPlane()
	for j, p := range v.planes {
		if p == nil {
			continue
		}
		if p != nullPlane && !p.Any() {
			v.planes[j] = nil
			freed++
			continue
		}
		st.addPlane(p.Optimize(mode))
	}
	v.metrics.RecordOptimize(freed, time.Since(start))
	v.logger.LogOptimize(mode.String(), freed, st)
	return st
}

// OptimizeGapSize run-length compacts every present plane without freeing
// empty ones.
func (v *Vector[T]) OptimizeGapSize() {
	for _, p := range v.planes {
		if p != nil {
			p.OptimizeGapSize()
		}
	}
}

// CalcStat returns the memory statistics of the vector including the
// serialization overhead of its header.
func (v *Vector[T]) CalcStat() Statistics {
	var st Statistics
	for _, p := range v.planes {
		if p != nil {
			st.addPlane(p.CalcStat())
		}
	}
	st.MaxSerializeMem += headerOverhead + planeOverhead*uint64(v.StoredPlanes())
	return st
}
