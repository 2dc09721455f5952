// Package metrics exposes sparse vector and snapshot events as Prometheus
// metrics.
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	v := sparsevec.New[uint32](sparsevec.WithMetricsCollector(c))
//	repo := snapshot.NewRepository(store, snapshot.WithObserver(c))
package metrics
