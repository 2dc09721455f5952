package minio

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/hupe1980/sparsevec/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_KeyAndRelative(t *testing.T) {
	tests := []struct {
		prefix, name, key string
	}{
		{"", "vec/CURRENT", "vec/CURRENT"},
		{"vectors/", "vec/CURRENT", "vectors/vec/CURRENT"},
		{"vectors", "vec/", "vectors/vec/"},
	}
	for _, tt := range tests {
		s := &Store{prefix: tt.prefix}
		key := s.key(tt.name)
		assert.Equal(t, tt.key, key)
		assert.Equal(t, tt.name, s.relative(key))
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{StatusCode: http.StatusNotFound}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestBlob_ReadAtPastEnd(t *testing.T) {
	b := &minioBlob{size: 4}
	n, err := b.ReadAt(t.Context(), make([]byte, 2), 4)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)

	n, err = b.ReadAt(t.Context(), nil, 0)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

// TestStore_Integration requires a running MinIO instance addressed by
// MINIO_ENDPOINT.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}

	ctx := t.Context()
	store, err := Dial(ctx, Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "test-sparsevec",
		Prefix:    "test-prefix/",
	})
	require.NoError(t, err)

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "vec/test.bin", data))

	blob, err := store.Open(ctx, "vec/test.bin")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	part := make([]byte, 5)
	n, err := blob.ReadAt(ctx, part, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, blob.Close())

	got, err := blobstore.Get(ctx, store, "vec/test.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "vec/")
	require.NoError(t, err)
	assert.Contains(t, names, "vec/test.bin")

	require.NoError(t, store.Delete(ctx, "vec/test.bin"))
	require.NoError(t, store.Delete(ctx, "vec/test.bin"))
	_, err = store.Open(ctx, "vec/test.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
