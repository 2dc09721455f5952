package sparsevec

import (
	"math"

	"github.com/hupe1980/sparsevec/internal/simd"
	"github.com/hupe1980/sparsevec/internal/transpose"
	"github.com/hupe1980/sparsevec/plane"
)

// probeGroup is the number of plane handles tested at once by Get.
const probeGroup = 4

// Get returns the value at idx. idx must be below Size(); the result for an
// out-of-range index is unspecified. Use At for a checked read.
func (v *Vector[T]) Get(idx uint32) T {
	var val T
	eff := v.effective + 1
	j := 0
	if simd.GroupedProbe() {
		for ; j+probeGroup <= eff; j += probeGroup {
			group := [probeGroup]*plane.Plane(v.planes[j : j+probeGroup])
			if group == ([probeGroup]*plane.Plane{}) {
				continue
			}
			for k, p := range group {
				if p != nil && p.Test(idx) {
					val |= T(1) << (j + k)
				}
			}
		}
	}
	for ; j < eff; j++ {
		if p := v.planes[j]; p != nil && p.Test(idx) {
			val |= T(1) << j
		}
	}
	return val
}

// At returns the value at idx, or a *RangeError when idx >= Size().
func (v *Vector[T]) At(idx uint32) (T, error) {
	if idx >= v.size {
		return 0, rangeError("at", idx, v.size)
	}
	return v.Get(idx), nil
}

// MaxIndex is the largest addressable element index.
const MaxIndex = math.MaxUint32 - 1

// grow extends the size to cover idx. An idx above MaxIndex would wrap the
// size, so it panics with a *RangeError.
func (v *Vector[T]) grow(op string, idx uint32) {
	if idx > MaxIndex {
		panic(rangeError(op, idx, v.size))
	}
	if idx >= v.size {
		v.size = idx + 1
	}
}

// Set stores val at idx, growing the size to idx+1 if needed, and marks the
// element assigned. idx must not exceed MaxIndex.
func (v *Vector[T]) Set(idx uint32, val T) {
	v.grow("set", idx)
	v.setValue(idx, val)
}

func (v *Vector[T]) setValue(idx uint32, val T) {
	v.setValueNoNull(idx, val)
	if p := v.NullPlane(); p != nil {
		p.Set(idx)
	}
}

func (v *Vector[T]) setValueNoNull(idx uint32, val T) {
	u := uint64(val)
	bsr := transpose.BitScanReverse(u)

	// planes above the new value's top bit must not keep stale ones
	for j := bsr; j <= v.effective; j++ {
		if p := v.planes[j]; p != nil {
			p.Clear(idx)
		}
	}
	if u == 0 {
		return
	}
	for j := 0; j <= bsr; j++ {
		if u&(1<<j) != 0 {
			v.GetPlane(j).Set(idx)
		} else if p := v.planes[j]; p != nil {
			p.Clear(idx)
		}
	}
}

// ClearValue sets the element at idx to zero. With setNull it is also marked
// unassigned.
func (v *Vector[T]) ClearValue(idx uint32, setNull bool) {
	v.grow("clear_value", idx)
	v.setValue(idx, 0)
	if setNull {
		if p := v.NullPlane(); p != nil {
			p.Clear(idx)
		}
	}
}

// SetNull clears the value at idx and marks it unassigned.
func (v *Vector[T]) SetNull(idx uint32) {
	v.ClearValue(idx, true)
}

// IsNull reports whether the element at idx is unassigned. A vector without
// NULL support has no NULL elements. It returns a *RangeError when
// idx >= Size().
func (v *Vector[T]) IsNull(idx uint32) (bool, error) {
	if idx >= v.size {
		return false, rangeError("is_null", idx, v.size)
	}
	p := v.NullPlane()
	if p == nil {
		return false, nil
	}
	return !p.Test(idx), nil
}

// Inc increments the element at idx as a binary counter. An overflow of the
// top plane wraps to zero.
func (v *Vector[T]) Inc(idx uint32) {
	v.grow("inc", idx)
	for j := 0; j < v.ValueBits(); j++ {
		if !v.GetPlane(j).Inc(idx) {
			break
		}
	}
	if p := v.NullPlane(); p != nil {
		p.Set(idx)
	}
}

// PushBack appends val.
func (v *Vector[T]) PushBack(val T) {
	idx := v.size
	v.grow("push_back", idx)
	v.setValue(idx, val)
}

// PushBackNoNull appends val without marking it assigned.
func (v *Vector[T]) PushBackNoNull(val T) {
	idx := v.size
	v.grow("push_back", idx)
	v.setValueNoNull(idx, val)
}

// ClearRange zeroes the closed interval [left, right] with one ranged clear
// per plane. Reversed bounds are reordered. With setNull the interval is also
// marked unassigned.
func (v *Vector[T]) ClearRange(left, right uint32, setNull bool) {
	if right < left {
		left, right = right, left
	}
	for j := 0; j <= v.effective; j++ {
		if p := v.planes[j]; p != nil {
			p.SetRange(left, right, false)
		}
	}
	if setNull {
		if p := v.NullPlane(); p != nil {
			p.SetRange(left, right, false)
		}
	}
}
