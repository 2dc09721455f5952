package metrics

import (
	"time"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sparsevec"

var (
	_ sparsevec.MetricsCollector = (*Collector)(nil)
	_ snapshot.Observer          = (*Collector)(nil)
)

// Collector exports vector and snapshot events as Prometheus metrics.
type Collector struct {
	ImportsTotal       *prometheus.CounterVec
	ImportedValues     prometheus.Counter
	ImportDuration     prometheus.Histogram
	DecodesTotal       *prometheus.CounterVec
	DecodedElements    *prometheus.CounterVec
	DecodeDuration     *prometheus.HistogramVec
	OptimizesTotal     prometheus.Counter
	PlanesFreedTotal   prometheus.Counter
	SnapshotOpsTotal   *prometheus.CounterVec
	SnapshotBytesTotal *prometheus.CounterVec
	SnapshotDuration   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		ImportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Total number of bulk imports",
		}, []string{"status"}),
		ImportedValues: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_values_total",
			Help:      "Total number of values imported",
		}),
		ImportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent in bulk imports",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		DecodesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decodes_total",
			Help:      "Total number of window decodes by strategy",
		}, []string{"strategy"}),
		DecodedElements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decoded_elements_total",
			Help:      "Total number of elements decoded by strategy",
		}, []string{"strategy"}),
		DecodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time spent in window decodes",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		}, []string{"strategy"}),
		OptimizesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizes_total",
			Help:      "Total number of optimize passes",
		}),
		PlanesFreedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planes_freed_total",
			Help:      "Total number of empty planes released by optimize",
		}),
		SnapshotOpsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_operations_total",
			Help:      "Total number of snapshot saves and loads",
		}, []string{"operation", "status"}),
		SnapshotBytesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Total snapshot bytes written and read",
		}, []string{"operation"}),
		SnapshotDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time spent saving and loading snapshots",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordImport implements sparsevec.MetricsCollector.
func (c *Collector) RecordImport(count int, duration time.Duration, err error) {
	c.ImportsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.ImportedValues.Add(float64(count))
	}
	c.ImportDuration.Observe(duration.Seconds())
}

// RecordDecode implements sparsevec.MetricsCollector.
func (c *Collector) RecordDecode(strategy sparsevec.DecodeStrategy, count int, duration time.Duration) {
	s := strategy.String()
	c.DecodesTotal.WithLabelValues(s).Inc()
	c.DecodedElements.WithLabelValues(s).Add(float64(count))
	c.DecodeDuration.WithLabelValues(s).Observe(duration.Seconds())
}

// RecordOptimize implements sparsevec.MetricsCollector.
func (c *Collector) RecordOptimize(planesFreed int, _ time.Duration) {
	c.OptimizesTotal.Inc()
	c.PlanesFreedTotal.Add(float64(planesFreed))
}

// RecordSave implements snapshot.Observer.
func (c *Collector) RecordSave(bytes int, duration time.Duration, err error) {
	c.recordSnapshot("save", bytes, duration, err)
}

// RecordLoad implements snapshot.Observer.
func (c *Collector) RecordLoad(bytes int, duration time.Duration, err error) {
	c.recordSnapshot("load", bytes, duration, err)
}

func (c *Collector) recordSnapshot(op string, bytes int, duration time.Duration, err error) {
	c.SnapshotOpsTotal.WithLabelValues(op, status(err)).Inc()
	c.SnapshotBytesTotal.WithLabelValues(op).Add(float64(bytes))
	c.SnapshotDuration.WithLabelValues(op).Observe(duration.Seconds())
}
