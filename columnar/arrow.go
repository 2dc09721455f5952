package columnar

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hupe1980/sparsevec"
)

var (
	// ErrUnsupportedType is returned for Arrow arrays that are not unsigned
	// integers.
	ErrUnsupportedType = errors.New("columnar: unsupported arrow type")
	// ErrOverflow is returned when a value does not fit the element type.
	ErrOverflow = errors.New("columnar: value overflows element type")
)

// decodeChunk is the window used to stream values out of a vector.
const decodeChunk = 4096

// ArrowType returns the Arrow data type matching T.
func ArrowType[T sparsevec.Unsigned]() arrow.DataType {
	switch bits.Len64(uint64(^T(0))) {
	case 8:
		return arrow.PrimitiveTypes.Uint8
	case 16:
		return arrow.PrimitiveTypes.Uint16
	case 32:
		return arrow.PrimitiveTypes.Uint32
	default:
		return arrow.PrimitiveTypes.Uint64
	}
}

// FromArrow builds a NULL-aware vector from an Arrow unsigned integer array.
// Arrow nulls become unassigned elements.
func FromArrow[T sparsevec.Unsigned](ctx context.Context, arr arrow.Array, optFns ...Option) (*sparsevec.Vector[T], error) {
	o := applyOptions(optFns)

	switch arr.(type) {
	case *array.Uint8, *array.Uint16, *array.Uint32, *array.Uint64:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType())
	}

	n := arr.Len()
	staging := int64(n) * int64(unsafe.Sizeof(T(0)))
	if err := o.controller.AcquireMemory(ctx, staging); err != nil {
		return nil, fmt.Errorf("%w: %w", sparsevec.ErrAllocation, err)
	}
	defer o.controller.ReleaseMemory(staging)

	values := make([]T, n)
	maxT := uint64(^T(0))
	for i := range n {
		if arr.IsNull(i) {
			continue
		}
		var x uint64
		switch a := arr.(type) {
		case *array.Uint8:
			x = uint64(a.Value(i))
		case *array.Uint16:
			x = uint64(a.Value(i))
		case *array.Uint32:
			x = uint64(a.Value(i))
		case *array.Uint64:
			x = a.Value(i)
		}
		if x > maxT {
			return nil, fmt.Errorf("%w: %d at index %d", ErrOverflow, x, i)
		}
		values[i] = T(x)
	}

	v := sparsevec.New[T](append([]sparsevec.Option{sparsevec.WithNullSupport()}, o.vectorOpts...)...)
	if n == 0 {
		return v, nil
	}
	if err := v.Import(values, 0); err != nil {
		return nil, err
	}
	if arr.NullN() > 0 {
		for i := range n {
			if arr.IsNull(i) {
				v.SetNull(uint32(i))
			}
		}
	}
	return v, nil
}

// ToArrow emits the vector as an Arrow array of the matching unsigned type.
// NULL elements of a NULL-aware vector become Arrow nulls. The caller owns
// the returned array and must Release it.
func ToArrow[T sparsevec.Unsigned](mem memory.Allocator, v *sparsevec.Vector[T]) arrow.Array {
	b := array.NewBuilder(mem, ArrowType[T]())
	defer b.Release()
	b.Reserve(int(v.Size()))

	buf := make([]T, decodeChunk)
	valid := make([]bool, decodeChunk)
	nulls := v.NullPlane()

	for from := uint32(0); from < v.Size(); {
		n := min(uint32(decodeChunk), v.Size()-from)
		v.Decode(buf[:n], from, true)
		for i := range n {
			valid[i] = nulls == nil || nulls.Test(from+i)
		}
		appendValues(b, buf[:n], valid[:n])
		from += n
	}
	return b.NewArray()
}

func appendValues[T sparsevec.Unsigned](b array.Builder, vals []T, valid []bool) {
	switch bb := b.(type) {
	case *array.Uint8Builder:
		bb.AppendValues(convert[T, uint8](vals), valid)
	case *array.Uint16Builder:
		bb.AppendValues(convert[T, uint16](vals), valid)
	case *array.Uint32Builder:
		bb.AppendValues(convert[T, uint32](vals), valid)
	case *array.Uint64Builder:
		bb.AppendValues(convert[T, uint64](vals), valid)
	}
}

func convert[T sparsevec.Unsigned, U uint8 | uint16 | uint32 | uint64](vals []T) []U {
	out := make([]U, len(vals))
	for i, x := range vals {
		out[i] = U(x)
	}
	return out
}
