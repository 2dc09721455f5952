package sparsevec

import (
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/sparsevec/plane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVector(t *testing.T, n int, seed uint64) (*Vector[uint32], []uint32) {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	want := make([]uint32, n)
	for i := range want {
		switch r.IntN(4) {
		case 0:
			want[i] = 0
		case 1:
			want[i] = uint32(r.IntN(16))
		default:
			want[i] = r.Uint32() >> r.IntN(32)
		}
	}
	v := New[uint32]()
	require.NoError(t, v.Import(want, 0))
	return v, want
}

func TestStrategyFor(t *testing.T) {
	assert.Equal(t, StrategyBlockProbe, StrategyFor(31))
	assert.Equal(t, StrategyEnumerator, StrategyFor(32))
	assert.Equal(t, StrategyEnumerator, StrategyFor(1023))
	assert.Equal(t, StrategyMasked, StrategyFor(1024))
	assert.Equal(t, "masked", StrategyMasked.String())
	assert.Equal(t, "unknown", DecodeStrategy(42).String())
}

func TestDecode_StrategiesAgree(t *testing.T) {
	v, want := randomVector(t, 200_000, 7)

	windows := []struct {
		from  uint32
		count int
	}{
		{0, 1},
		{100, 33},
		{65530, 20},   // crosses a physical block boundary
		{65000, 1000}, // crosses a physical block boundary
		{199_990, 50}, // clamped by size
		{0, 200_000},  // full range
		{1, 200_000},
		{131_000, 4096},
	}

	for _, w := range windows {
		end := min(int(w.from)+w.count, len(want))
		for _, s := range []DecodeStrategy{StrategyBlockProbe, StrategyEnumerator, StrategyMasked} {
			dst := make([]uint32, w.count)
			n := v.DecodeWith(s, dst, w.from, true)
			require.Equal(t, uint32(end-int(w.from)), n, "%s from=%d count=%d", s, w.from, w.count)
			assert.Equal(t, want[w.from:end], dst[:n], "%s from=%d count=%d", s, w.from, w.count)
			for _, x := range dst[n:] {
				require.Zero(t, x)
			}
		}
	}
}

func TestDecode_SplitWindow(t *testing.T) {
	v, _ := randomVector(t, 1000, 11)

	whole := make([]uint32, 33)
	require.Equal(t, uint32(33), v.Decode(whole, 100, true))

	first := make([]uint32, 16)
	second := make([]uint32, 17)
	require.Equal(t, uint32(16), v.Decode(first, 100, true))
	require.Equal(t, uint32(17), v.Decode(second, 116, true))

	assert.Equal(t, whole, append(first, second...))
}

func TestDecode_OutOfRange(t *testing.T) {
	v := New[uint16]()
	v.PushBack(3)

	dst := []uint16{9, 9, 9}
	assert.Equal(t, uint32(0), v.Decode(dst, 5, true))
	assert.Equal(t, []uint16{0, 0, 0}, dst)
	assert.Equal(t, uint32(0), v.Decode(nil, 0, true))
}

func TestDecode_NoZeroFill(t *testing.T) {
	v := New[uint8]()
	require.NoError(t, v.Import([]uint8{1, 2}, 0))

	dst := []uint8{0x10, 0x10}
	v.Decode(dst, 0, false)
	assert.Equal(t, []uint8{0x11, 0x12}, dst)
}

func TestDecode_MaskPool(t *testing.T) {
	pool := plane.NewPool(0)
	v, want := randomVector(t, 5000, 3)
	v.SetMaskPool(pool)

	dst := make([]uint32, 2048)
	n := v.Decode(dst, 1000, true)
	require.Equal(t, uint32(2048), n)
	assert.Equal(t, want[1000:3048], dst)

	w := New[uint32](WithMaskPool(pool))
	require.NoError(t, w.Import(want, 0))
	n = w.Decode(dst, 10, true)
	require.Equal(t, uint32(2048), n)
	assert.Equal(t, want[10:2058], dst)
}

func TestDecode_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	v := New[uint8](WithMetricsCollector(mc))
	require.NoError(t, v.Import(make([]uint8, 2000), 0))

	v.Decode(make([]uint8, 8), 0, true)
	v.Decode(make([]uint8, 64), 0, true)
	v.Decode(make([]uint8, 1500), 0, true)

	st := mc.GetStats()
	assert.Equal(t, int64(1), st.DecodeCount[StrategyBlockProbe])
	assert.Equal(t, int64(1), st.DecodeCount[StrategyEnumerator])
	assert.Equal(t, int64(1), st.DecodeCount[StrategyMasked])
	assert.Equal(t, int64(8+64+1500), st.DecodeElements)
}
