package sparsevec

import (
	"math"
	"time"

	"github.com/hupe1980/sparsevec/internal/transpose"
)

// Import writes values at [offset, offset+len(values)). The range is cleared
// first, so zero values leave no residual bits. The size grows to cover the
// range and a NULL-aware vector marks it assigned.
//
// An empty values slice, or a range past the largest addressable index,
// yields a *RangeError and leaves the vector unchanged.
func (v *Vector[T]) Import(values []T, offset uint32) error {
	start := time.Now()
	err := v.importValues(values, offset)
	v.metrics.RecordImport(len(values), time.Since(start), err)
	v.logger.LogImport(offset, len(values), v.size, err)
	return err
}

// ImportBack appends values at the end of the vector.
func (v *Vector[T]) ImportBack(values []T) error {
	return v.Import(values, v.size)
}

func (v *Vector[T]) importValues(values []T, offset uint32) error {
	if len(values) == 0 {
		return &RangeError{Op: "import", Index: offset, Size: v.size, cause: errEmptyImport}
	}
	if uint64(offset)+uint64(len(values)) > math.MaxUint32 {
		return rangeError("import", offset, v.size)
	}
	count := uint32(len(values))
	end := offset + count

	v.ClearRange(offset, end-1, false)

	m := transpose.NewMatrix(v.ValueBits(), transpose.Window, func(row int, idx []uint32) {
		v.GetPlane(row).AddSorted(idx)
	})
	for i, val := range values {
		if val == 0 {
			continue
		}
		m.AddValue(uint64(val), offset+uint32(i))
	}
	m.Flush()

	if end > v.size {
		v.size = end
	}
	if p := v.NullPlane(); p != nil {
		p.SetRange(offset, end-1, true)
	}
	return nil
}
