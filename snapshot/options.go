package snapshot

import (
	"runtime"
	"time"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/resource"
)

// Observer receives snapshot save and load events.
type Observer interface {
	// RecordSave is called after a snapshot was encoded and written.
	RecordSave(bytes int, duration time.Duration, err error)
	// RecordLoad is called after a snapshot was read and decoded.
	RecordLoad(bytes int, duration time.Duration, err error)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) RecordSave(int, time.Duration, error) {}
func (NoopObserver) RecordLoad(int, time.Duration, error) {}

type options struct {
	compression Compression
	concurrency int
	controller  *resource.Controller
	observer    Observer
	logger      *sparsevec.Logger
	vectorOpts  []sparsevec.Option
}

// Option configures encoding, decoding and the Repository.
type Option func(*options)

// WithCompression sets the plane block codec. Default: CompressionNone.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithConcurrency bounds the number of planes encoded or decoded in
// parallel. Values <= 0 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithController applies memory, worker and I/O budgets.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithObserver sets the save/load event hook.
//
// If nil is passed, a NoopObserver is used.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			obs = NoopObserver{}
		}
		o.observer = obs
	}
}

// WithRepositoryLogger sets the logger used by the Repository.
//
// If nil is passed, logging is disabled.
func WithRepositoryLogger(l *sparsevec.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = sparsevec.NoopLogger()
		}
		o.logger = l
	}
}

// WithVectorOptions sets options applied to decoded vectors, such as a
// logger or a metrics collector. NULL support and the plane bound always
// come from the snapshot.
func WithVectorOptions(opts ...sparsevec.Option) Option {
	return func(o *options) {
		o.vectorOpts = append(o.vectorOpts, opts...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		compression: CompressionNone,
		observer:    NoopObserver{},
		logger:      sparsevec.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

func (o *options) workers() int {
	if o.concurrency > 0 {
		return o.concurrency
	}
	return runtime.GOMAXPROCS(0)
}
