package snapshot

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/blobstore"
	"github.com/hupe1980/sparsevec/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	saves  []int
	loads  []int
	errors int
}

func (r *recordingObserver) RecordSave(bytes int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, bytes)
	if err != nil {
		r.errors++
	}
}

func (r *recordingObserver) RecordLoad(bytes int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, bytes)
	if err != nil {
		r.errors++
	}
}

func TestRepository_SaveLoad(t *testing.T) {
	stores := map[string]func(t *testing.T) blobstore.BlobStore{
		"memory": func(*testing.T) blobstore.BlobStore { return blobstore.NewMemoryStore() },
		"local":  func(t *testing.T) blobstore.BlobStore { return blobstore.NewLocalStore(t.TempDir()) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			obs := &recordingObserver{}
			repo := NewRepository(newStore(t),
				WithCompression(CompressionLZ4),
				WithObserver(obs),
			)

			_, err := Load[uint32](ctx, repo, "clicks")
			assert.ErrorIs(t, err, ErrNotFound)

			v := sampleVector(t, true)
			v1, err := Save(ctx, repo, "clicks", v)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), v1)

			v.Set(7, 4242)
			v2, err := Save(ctx, repo, "clicks", v)
			require.NoError(t, err)
			assert.Equal(t, uint64(2), v2)

			versions, err := repo.Versions(ctx, "clicks")
			require.NoError(t, err)
			assert.Equal(t, []uint64{1, 2}, versions)

			latest, err := repo.Latest(ctx, "clicks")
			require.NoError(t, err)
			assert.Equal(t, uint64(2), latest)

			got, err := Load[uint32](ctx, repo, "clicks")
			require.NoError(t, err)
			assert.True(t, v.Equal(got, sparsevec.UseNull))
			assert.Equal(t, uint32(4242), got.Get(7))

			old, err := LoadVersion[uint32](ctx, repo, "clicks", 1)
			require.NoError(t, err)
			assert.NotEqual(t, uint32(4242), old.Get(7))

			_, err = LoadVersion[uint32](ctx, repo, "clicks", 9)
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, repo.Delete(ctx, "clicks", 2), ErrVersionInUse)
			require.NoError(t, repo.Delete(ctx, "clicks", 1))
			versions, err = repo.Versions(ctx, "clicks")
			require.NoError(t, err)
			assert.Equal(t, []uint64{2}, versions)

			assert.Len(t, obs.saves, 2)
			assert.Len(t, obs.loads, 4)
			assert.Equal(t, 2, obs.errors)
		})
	}
}

func TestRepository_IndependentNames(t *testing.T) {
	ctx := t.Context()
	repo := NewRepository(blobstore.NewMemoryStore())

	a := sparsevec.New[uint8]()
	a.Set(0, 1)
	b := sparsevec.New[uint8]()
	b.Set(0, 2)

	_, err := Save(ctx, repo, "a", a)
	require.NoError(t, err)
	_, err = Save(ctx, repo, "ab", b)
	require.NoError(t, err)
	_, err = Save(ctx, repo, "ab", b)
	require.NoError(t, err)

	versions, err := repo.Versions(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, versions)

	got, err := Load[uint8](ctx, repo, "a")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), got.Get(0))
}

func TestRepository_InvalidName(t *testing.T) {
	ctx := t.Context()
	repo := NewRepository(blobstore.NewMemoryStore())

	for _, name := range []string{"", "/abs", "../up", "a//b", "a/"} {
		_, err := Save(ctx, repo, name, sparsevec.New[uint8]())
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	_, err := repo.Versions(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRepository_LogsAndLimits(t *testing.T) {
	ctx := t.Context()

	var buf bytes.Buffer
	logger := sparsevec.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30, MaxEncodeWorkers: 4})

	repo := NewRepository(blobstore.NewMemoryStore(),
		WithRepositoryLogger(logger),
		WithController(rc),
	)

	_, err := Save(ctx, repo, "vec", sampleVector(t, false))
	require.NoError(t, err)
	_, err = Load[uint32](ctx, repo, "vec")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "snapshot saved")
	assert.Contains(t, out, "snapshot loaded")
	assert.Contains(t, out, VersionKey("vec", 1))
}

func TestVersionKey(t *testing.T) {
	assert.Equal(t, "vec/00000000000000000042.spvc", VersionKey("vec", 42))

	v, ok := parseVersion("vec", "vec/00000000000000000042.spvc")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), v)

	for _, key := range []string{"vec/CURRENT", "vec/42.spvc", "other/00000000000000000042.spvc", "vec/00000000000000000000.spvc"} {
		_, ok := parseVersion("vec", key)
		assert.False(t, ok, key)
	}
}
