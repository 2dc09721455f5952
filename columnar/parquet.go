package columnar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unsafe"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/plane"
	"github.com/hupe1980/sparsevec/resource"
	"github.com/parquet-go/parquet-go"
)

// Parquet key-value metadata written next to the rows.
const (
	MetaSize     = "sparsevec.size"
	MetaNullable = "sparsevec.nullable"
	MetaBits     = "sparsevec.value_bits"
)

// ErrInvalidMetadata is returned when the vector metadata of a Parquet file
// cannot be parsed or contradicts its rows.
var ErrInvalidMetadata = errors.New("columnar: invalid parquet metadata")

// Row is the Parquet row schema: one row per stored element. A nil Value
// is an explicit NULL.
type Row struct {
	Index uint32  `parquet:"index"`
	Value *uint64 `parquet:"value,optional"`
}

// WriteParquet writes the stored elements of v as zstd-compressed rows.
//
// A NULL-aware vector emits a row for every assigned element, zero values
// included; other vectors emit their non-zero elements. The logical size
// and NULL support travel as key-value metadata.
func WriteParquet[T sparsevec.Unsigned](ctx context.Context, w io.Writer, v *sparsevec.Vector[T], optFns ...Option) error {
	o := applyOptions(optFns)

	pw := parquet.NewGenericWriter[Row](resource.NewRateLimitedWriter(ctx, w, o.controller),
		parquet.Compression(&parquet.Zstd),
		parquet.KeyValueMetadata(MetaSize, strconv.FormatUint(uint64(v.Size()), 10)),
		parquet.KeyValueMetadata(MetaNullable, strconv.FormatBool(v.IsNullable())),
		parquet.KeyValueMetadata(MetaBits, strconv.Itoa(v.ValueBits())),
	)
	closed := false
	defer func() {
		if !closed {
			_ = pw.Close()
		}
	}()

	rows := make([]Row, 0, o.batchSize)
	values := make([]uint64, o.batchSize)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("columnar: write rows: %w", err)
		}
		rows = rows[:0]
		return nil
	}

	for en := storedPositions(v).Enumerator(0); en.Valid(); en.Next() {
		idx := en.Value()
		if idx >= v.Size() {
			break
		}
		values[len(rows)] = uint64(v.Get(idx))
		rows = append(rows, Row{Index: idx, Value: &values[len(rows)]})
		if len(rows) == o.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	closed = true
	return pw.Close()
}

// storedPositions returns the positions that WriteParquet emits.
func storedPositions[T sparsevec.Unsigned](v *sparsevec.Vector[T]) *plane.Plane {
	if p := v.NullPlane(); p != nil {
		return p
	}
	union := plane.New(v.Bound())
	for j := 0; j < v.EffectivePlanes() && j < v.ValueBits(); j++ {
		if p := v.Plane(j); p != nil {
			union.Or(p)
		}
	}
	return union
}

// ReadParquet reads a file written by WriteParquet, or any file with the Row
// schema. Without metadata the size is one past the largest index and the
// vector is NULL-aware.
func ReadParquet[T sparsevec.Unsigned](ctx context.Context, r io.ReaderAt, size int64, optFns ...Option) (*sparsevec.Vector[T], error) {
	o := applyOptions(optFns)

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("columnar: open parquet: %w", err)
	}

	nullable := true
	if s, ok := pf.Lookup(MetaNullable); ok {
		if nullable, err = strconv.ParseBool(s); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, MetaNullable, err)
		}
	}
	var logical uint64
	hasSize := false
	if s, ok := pf.Lookup(MetaSize); ok {
		if logical, err = strconv.ParseUint(s, 10, 32); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, MetaSize, err)
		}
		hasSize = true
	}

	opts := o.vectorOpts
	if nullable {
		opts = append([]sparsevec.Option{sparsevec.WithNullSupport()}, opts...)
	}
	v := sparsevec.New[T](opts...)

	staging := int64(o.batchSize) * int64(unsafe.Sizeof(Row{})+unsafe.Sizeof(uint64(0)))
	if err := o.controller.AcquireMemory(ctx, staging); err != nil {
		return nil, fmt.Errorf("%w: %w", sparsevec.ErrAllocation, err)
	}
	defer o.controller.ReleaseMemory(staging)

	pr := parquet.NewGenericReader[Row](pf)
	defer pr.Close()

	maxT := uint64(^T(0))
	rows := make([]Row, o.batchSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := pr.Read(rows)
		for _, row := range rows[:n] {
			if row.Value == nil {
				if row.Index >= v.Size() {
					v.Resize(row.Index + 1)
				}
				v.SetNull(row.Index)
				continue
			}
			if *row.Value > maxT {
				return nil, fmt.Errorf("%w: %d at index %d", ErrOverflow, *row.Value, row.Index)
			}
			v.Set(row.Index, T(*row.Value))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("columnar: read rows: %w", err)
		}
	}

	if hasSize {
		if uint64(v.Size()) > logical {
			return nil, fmt.Errorf("%w: row index %d beyond %s %d", ErrInvalidMetadata, v.Size()-1, MetaSize, logical)
		}
		v.Resize(uint32(logical))
	}
	return v, nil
}
