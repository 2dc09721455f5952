package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/blobstore"
)

const (
	// CurrentFileName is the pointer blob naming the latest version.
	CurrentFileName = "CURRENT"
	// FileExt is the extension of version blobs.
	FileExt = ".spvc"
)

var (
	// ErrNotFound is returned when a vector or version does not exist.
	ErrNotFound = errors.New("snapshot: not found")
	// ErrInvalidName is returned for empty names or names that are not a
	// clean relative path.
	ErrInvalidName = errors.New("snapshot: invalid name")
	// ErrVersionInUse is returned when deleting the version CURRENT points to.
	ErrVersionInUse = errors.New("snapshot: version is current")
)

// Repository stores versioned snapshots of named vectors in a blob store.
//
// Layout per vector:
//
//	<name>/<version, 20 digits>.spvc
//	<name>/CURRENT                      key of the latest version
//
// Save writes the version blob before updating CURRENT, so a crash never
// leaves CURRENT pointing at a missing blob.
type Repository struct {
	store blobstore.BlobStore
	opts  options
	mu    sync.Mutex
}

// NewRepository creates a repository over store.
func NewRepository(store blobstore.BlobStore, optFns ...Option) *Repository {
	return &Repository{
		store: store,
		opts:  applyOptions(optFns),
	}
}

// VersionKey returns the blob name of a version.
func VersionKey(name string, version uint64) string {
	return path.Join(name, fmt.Sprintf("%020d%s", version, FileExt))
}

func currentKey(name string) string {
	return path.Join(name, CurrentFileName)
}

func validateName(name string) error {
	if name == "" || path.Clean(name) != name || strings.HasPrefix(name, "/") || strings.HasPrefix(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save encodes v as the next version of name and makes it current.
func Save[T sparsevec.Unsigned](ctx context.Context, r *Repository, name string, v *sparsevec.Vector[T]) (uint64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	version, n, key, err := save(ctx, r, name, v)
	r.opts.observer.RecordSave(n, time.Since(start), err)
	r.opts.logger.LogSave(ctx, key, int64(n), err)
	return version, err
}

func save[T sparsevec.Unsigned](ctx context.Context, r *Repository, name string, v *sparsevec.Vector[T]) (uint64, int, string, error) {
	versions, err := r.versions(ctx, name)
	if err != nil {
		return 0, 0, name, err
	}
	version := uint64(1)
	if len(versions) > 0 {
		version = versions[len(versions)-1] + 1
	}
	key := VersionKey(name, version)

	data, err := encode(ctx, v, &r.opts)
	if err != nil {
		return 0, 0, key, err
	}
	if err := r.opts.controller.AcquireIO(ctx, len(data)); err != nil {
		return 0, 0, key, err
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return 0, 0, key, fmt.Errorf("snapshot: write %s: %w", key, err)
	}
	if err := r.store.Put(ctx, currentKey(name), []byte(key)); err != nil {
		return 0, 0, key, fmt.Errorf("snapshot: update %s: %w", currentKey(name), err)
	}
	return version, len(data), key, nil
}

// Load decodes the current version of name.
func Load[T sparsevec.Unsigned](ctx context.Context, r *Repository, name string) (*sparsevec.Vector[T], error) {
	return LoadVersion[T](ctx, r, name, 0)
}

// LoadVersion decodes a specific version of name. Version 0 means current.
func LoadVersion[T sparsevec.Unsigned](ctx context.Context, r *Repository, name string, version uint64) (*sparsevec.Vector[T], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	start := time.Now()
	key := VersionKey(name, version)
	var (
		n   int
		v   *sparsevec.Vector[T]
		err error
	)
	if version == 0 {
		key, err = r.current(ctx, name)
	}
	if err == nil {
		var data []byte
		data, err = r.read(ctx, key)
		n = len(data)
		if err == nil {
			v, err = decode[T](ctx, data, &r.opts)
		}
	}

	r.opts.observer.RecordLoad(n, time.Since(start), err)
	var size uint32
	if v != nil {
		size = v.Size()
	}
	r.opts.logger.LogLoad(ctx, key, size, err)
	return v, err
}

// Latest returns the version CURRENT points to.
func (r *Repository) Latest(ctx context.Context, name string) (uint64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	key, err := r.current(ctx, name)
	if err != nil {
		return 0, err
	}
	version, ok := parseVersion(name, key)
	if !ok {
		return 0, fmt.Errorf("%w: %s references %q", ErrCorrupt, currentKey(name), key)
	}
	return version, nil
}

// Versions returns the stored versions of name in ascending order.
func (r *Repository) Versions(ctx context.Context, name string) ([]uint64, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return r.versions(ctx, name)
}

// Delete removes one version. The current version cannot be deleted.
func (r *Repository) Delete(ctx context.Context, name string, version uint64) error {
	if err := validateName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	latest, err := r.Latest(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err == nil && latest == version {
		return fmt.Errorf("%w: %s@%d", ErrVersionInUse, name, version)
	}
	return r.store.Delete(ctx, VersionKey(name, version))
}

func (r *Repository) versions(ctx context.Context, name string) ([]uint64, error) {
	names, err := r.store.List(ctx, name+"/")
	if err != nil {
		return nil, fmt.Errorf("snapshot: list %s: %w", name, err)
	}
	var out []uint64
	for _, n := range names {
		if v, ok := parseVersion(name, n); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func parseVersion(name, key string) (uint64, bool) {
	rest, ok := strings.CutPrefix(key, name+"/")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, FileExt)
	if !ok || len(digits) != 20 {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

func (r *Repository) current(ctx context.Context, name string) (string, error) {
	data, err := blobstore.Get(ctx, r.store, currentKey(name))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("snapshot: read %s: %w", currentKey(name), err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *Repository) read(ctx context.Context, key string) ([]byte, error) {
	b, err := r.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("snapshot: open %s: %w", key, err)
	}
	defer b.Close()

	if err := r.opts.controller.AcquireIO(ctx, int(b.Size())); err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", key, err)
	}
	return data, nil
}
