package sparsevec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; package metrics ships one.
type MetricsCollector interface {
	// RecordImport is called after each bulk import.
	// count is the number of imported values, err is nil if successful.
	RecordImport(count int, duration time.Duration, err error)

	// RecordDecode is called after each window decode with the strategy
	// that served it and the number of decoded elements.
	RecordDecode(strategy DecodeStrategy, count int, duration time.Duration)

	// RecordOptimize is called after each compaction pass.
	RecordOptimize(planesFreed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordImport(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordDecode(DecodeStrategy, int, time.Duration) {}
func (NoopMetricsCollector) RecordOptimize(int, time.Duration)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
	ImportValues     atomic.Int64
	ImportTotalNanos atomic.Int64
	DecodeCount      [numDecodeStrategies]atomic.Int64
	DecodeElements   atomic.Int64
	OptimizeCount    atomic.Int64
	PlanesFreed      atomic.Int64
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(count int, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportErrors.Add(1)
		return
	}
	b.ImportValues.Add(int64(count))
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(strategy DecodeStrategy, count int, _ time.Duration) {
	if strategy < numDecodeStrategies {
		b.DecodeCount[strategy].Add(1)
	}
	b.DecodeElements.Add(int64(count))
}

// RecordOptimize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOptimize(planesFreed int, _ time.Duration) {
	b.OptimizeCount.Add(1)
	b.PlanesFreed.Add(int64(planesFreed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	st := BasicMetricsStats{
		ImportCount:    b.ImportCount.Load(),
		ImportErrors:   b.ImportErrors.Load(),
		ImportValues:   b.ImportValues.Load(),
		DecodeElements: b.DecodeElements.Load(),
		OptimizeCount:  b.OptimizeCount.Load(),
		PlanesFreed:    b.PlanesFreed.Load(),
	}
	if st.ImportCount > 0 {
		st.ImportAvgNanos = b.ImportTotalNanos.Load() / st.ImportCount
	}
	for i := range b.DecodeCount {
		st.DecodeCount[i] = b.DecodeCount[i].Load()
	}
	return st
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ImportCount    int64
	ImportErrors   int64
	ImportValues   int64
	ImportAvgNanos int64
	DecodeCount    [numDecodeStrategies]int64
	DecodeElements int64
	OptimizeCount  int64
	PlanesFreed    int64
}
