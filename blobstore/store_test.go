package blobstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	}
}

func TestBlobStore_Lifecycle(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			data := []byte("hello world, this is a snapshot blob")

			require.NoError(t, store.Put(ctx, "vec/00000000000000000001.spvc", data))
			require.NoError(t, store.Put(ctx, "vec/CURRENT", []byte("x")))
			require.NoError(t, store.Put(ctx, "other/CURRENT", []byte("y")))

			blob, err := store.Open(ctx, "vec/00000000000000000001.spvc")
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err := blob.ReadAt(ctx, buf, 6)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "world", string(buf))

			all, err := ReadAll(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, data, all)
			require.NoError(t, blob.Close())

			names, err := store.List(ctx, "vec/")
			require.NoError(t, err)
			assert.Equal(t, []string{"vec/00000000000000000001.spvc", "vec/CURRENT"}, names)

			// overwrite
			require.NoError(t, store.Put(ctx, "vec/CURRENT", []byte("zz")))
			got, err := Get(ctx, store, "vec/CURRENT")
			require.NoError(t, err)
			assert.Equal(t, "zz", string(got))

			require.NoError(t, store.Delete(ctx, "vec/CURRENT"))
			require.NoError(t, store.Delete(ctx, "vec/CURRENT"))
			_, err = store.Open(ctx, "vec/CURRENT")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_NoTempLeftovers(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)
	require.NoError(t, store.Put(t.Context(), "a/b", []byte("1")))

	entries, err := os.ReadDir(filepath.Join(root, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Name())
}

func TestMemoryStore_PutCopies(t *testing.T) {
	store := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, store.Put(t.Context(), "k", data))
	data[0] = 'x'

	got, err := Get(t.Context(), store, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
