package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/blobstore"
	"github.com/hupe1980/sparsevec/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Vector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	v := sparsevec.New[uint32](sparsevec.WithMetricsCollector(c))
	require.NoError(t, v.Import([]uint32{1, 2, 3, 4}, 0))
	require.Error(t, v.Import(nil, 0))

	dst := make([]uint32, 4)
	v.Decode(dst, 0, true)
	v.Optimize(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ImportsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ImportsTotal.WithLabelValues("error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.ImportedValues))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DecodesTotal.WithLabelValues(sparsevec.StrategyBlockProbe.String())))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.DecodedElements.WithLabelValues(sparsevec.StrategyBlockProbe.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.OptimizesTotal))
}

func TestCollector_Snapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	ctx := t.Context()

	repo := snapshot.NewRepository(blobstore.NewMemoryStore(), snapshot.WithObserver(c))
	v := sparsevec.New[uint8]()
	v.Set(3, 9)

	_, err := snapshot.Save(ctx, repo, "vec", v)
	require.NoError(t, err)
	_, err = snapshot.Load[uint8](ctx, repo, "vec")
	require.NoError(t, err)
	_, err = snapshot.Load[uint8](ctx, repo, "missing")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOpsTotal.WithLabelValues("save", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOpsTotal.WithLabelValues("load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOpsTotal.WithLabelValues("load", "error")))
	assert.Equal(t,
		testutil.ToFloat64(c.SnapshotBytesTotal.WithLabelValues("save")),
		testutil.ToFloat64(c.SnapshotBytesTotal.WithLabelValues("load")))
}

func TestCollector_Direct(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOptimize(3, time.Millisecond)
	c.RecordSave(10, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 3.0, testutil.ToFloat64(c.PlanesFreedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOpsTotal.WithLabelValues("save", "error")))

	count, err := testutil.GatherAndCount(reg, "sparsevec_planes_freed_total", "sparsevec_snapshot_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
