package sparsevec

import "github.com/hupe1980/sparsevec/plane"

type options struct {
	nullable         bool
	bound            uint32
	logger           *Logger
	metricsCollector MetricsCollector
	maskPool         *plane.Pool
}

// Option configures a Vector.
type Option func(*options)

// WithNullSupport makes the vector NULL-aware: it tracks which elements have
// been assigned in an extra plane.
func WithNullSupport() Option {
	return func(o *options) {
		o.nullable = true
	}
}

// WithMaxSize sets the per-plane addressable size hint. Zero means
// plane.MaxSize.
func WithMaxSize(bound uint32) Option {
	return func(o *options) {
		o.bound = bound
	}
}

// WithLogger sets the logger for bulk operations.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics hook.
//
// If nil is passed, a NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaskPool attaches a pool of transient mask planes used by large
// window decodes. One pool may serve many vectors.
func WithMaskPool(p *plane.Pool) Option {
	return func(o *options) {
		o.maskPool = p
	}
}

func defaultOptions() options {
	return options{
		bound:            plane.MaxSize,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}
