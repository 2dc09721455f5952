package columnar

import (
	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/resource"
)

type options struct {
	controller *resource.Controller
	vectorOpts []sparsevec.Option
	batchSize  int
}

// Option configures a conversion.
type Option func(*options)

// WithController charges conversions against a resource budget: staging
// buffers against the memory limit and Parquet output against the I/O limit.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithVectorOptions sets options applied to vectors built by FromArrow and
// ReadParquet. NULL support is decided by the conversion itself.
func WithVectorOptions(opts ...sparsevec.Option) Option {
	return func(o *options) {
		o.vectorOpts = append(o.vectorOpts, opts...)
	}
}

// WithBatchSize sets the number of rows per Parquet read or write batch.
// Default: 4096.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{batchSize: 4096}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
