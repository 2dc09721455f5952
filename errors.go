package sparsevec

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is the sentinel all range errors unwrap to.
	ErrOutOfRange = errors.New("index out of range")

	// ErrAllocation indicates that an allocation was refused, for example by
	// a memory budget. It is never returned for a bad index.
	ErrAllocation = errors.New("allocation failed")

	errEmptyImport = fmt.Errorf("%w: empty import", ErrOutOfRange)
)

// RangeError reports an index outside [0, Size) on a checked accessor, or an
// empty bulk import.
//
// errors.Is(err, ErrOutOfRange) holds for every RangeError.
type RangeError struct {
	Op    string
	Index uint32
	Size  uint32
	cause error
}

func (e *RangeError) Error() string {
	if e.cause != nil && e.cause != ErrOutOfRange {
		return fmt.Sprintf("sparsevec: %s: %v", e.Op, e.cause)
	}
	return fmt.Sprintf("sparsevec: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Size)
}

func (e *RangeError) Unwrap() error {
	if e.cause == nil {
		return ErrOutOfRange
	}
	return e.cause
}

func rangeError(op string, idx, size uint32) error {
	return &RangeError{Op: op, Index: idx, Size: size, cause: ErrOutOfRange}
}
