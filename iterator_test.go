package sparsevec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_Walk(t *testing.T) {
	v, want := randomVector(t, 2*IteratorBufferSize+100, 5)

	i := 0
	for it := v.Begin(); it.Valid(); it.Advance() {
		require.Equal(t, uint32(i), it.Pos())
		require.Equal(t, want[i], it.Value(), "index %d", i)
		i++
	}
	assert.Equal(t, len(want), i)
}

func TestIterator_All(t *testing.T) {
	v, want := randomVector(t, IteratorBufferSize+1, 9)

	got := make([]uint32, 0, len(want))
	for i, x := range v.All() {
		require.Equal(t, uint32(len(got)), i)
		got = append(got, x)
	}
	assert.Equal(t, want, got)

	// early break
	n := 0
	for range v.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestIterator_GoTo(t *testing.T) {
	v, want := randomVector(t, 20_000, 13)

	it := v.IteratorAt(15_000)
	require.True(t, it.Valid())
	assert.Equal(t, want[15_000], it.Value())

	it.GoTo(3)
	assert.Equal(t, want[3], it.Value())
	it.Advance()
	assert.Equal(t, want[4], it.Value())

	it.GoTo(20_000)
	assert.False(t, it.Valid())
	assert.True(t, it.Equal(v.End()))

	it = v.Begin()
	it.Invalidate()
	assert.False(t, it.Valid())
	it.Advance()
	assert.False(t, it.Valid())
}

func TestIterator_Compare(t *testing.T) {
	v := New[uint8]()
	v.Resize(10)
	w := New[uint8]()
	w.Resize(10)

	a := v.IteratorAt(2)
	b := v.IteratorAt(2)
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(w.IteratorAt(2)), "different vectors")

	b.Advance()
	assert.False(t, a.Equal(b))
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(v.End()))
}

func TestIterator_ValueWhenInvalid(t *testing.T) {
	v := New[uint32]()
	require.NoError(t, v.ImportBack([]uint32{9, 8, 7}))

	assert.Zero(t, v.End().Value())
	assert.Zero(t, v.IteratorAt(10).Value())

	it := v.IteratorAt(2)
	assert.Equal(t, uint32(7), it.Value())
	it.Advance()
	require.False(t, it.Valid())
	assert.Zero(t, it.Value())
	assert.False(t, it.IsNull())
}

func TestIterator_EmptyVector(t *testing.T) {
	v := New[uint16]()
	assert.False(t, v.Begin().Valid())
	assert.True(t, v.Begin().Equal(v.End()))
	for range v.All() {
		t.Fatal("empty vector yields nothing")
	}
}

func TestIterator_IsNull(t *testing.T) {
	v := New[uint8](WithNullSupport())
	v.Resize(3)
	v.Set(1, 7)

	var nulls []bool
	for it := v.Begin(); it.Valid(); it.Advance() {
		nulls = append(nulls, it.IsNull())
	}
	assert.Equal(t, []bool{true, false, true}, nulls)
	assert.False(t, v.End().IsNull())
}
