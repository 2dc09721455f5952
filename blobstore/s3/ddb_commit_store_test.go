package s3

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/sparsevec/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDB is an in-memory DynamoDB table keyed by base_uri and version.
type fakeDDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	// beforePut runs before each PutItem, used to inject a racing writer.
	beforePut func()
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(attrs map[string]types.AttributeValue) string {
	uri := attrs["base_uri"].(*types.AttributeValueMemberS).Value
	version := attrs["version"].(*types.AttributeValueMemberN).Value
	return uri + ":" + version
}

func (f *fakeDDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if hook := f.beforePut; hook != nil {
		f.beforePut = nil
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := itemKey(params.Item)
	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := f.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	f.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, item := range f.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == uri {
			items = append(items, item)
		}
	}

	version := func(i int) uint64 {
		v, _ := strconv.ParseUint(items[i]["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	desc := params.ScanIndexForward != nil && !*params.ScanIndexForward
	sort.Slice(items, func(i, j int) bool {
		if desc {
			return version(i) > version(j)
		}
		return version(i) < version(j)
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *fakeDDB) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(params.Key)]}, nil
}

func (f *fakeDDB) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestCommitStore(ddb *fakeDDB) (*DDBCommitStore, *blobstore.MemoryStore) {
	mem := blobstore.NewMemoryStore()
	return NewDDBCommitStore(mem, ddb, "sparsevec-commits", "s3://bucket/root/"), mem
}

func readPointer(t *testing.T, s blobstore.BlobStore, name string) string {
	t.Helper()
	data, err := blobstore.Get(t.Context(), s, name)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_Pointer(t *testing.T) {
	ctx := t.Context()
	ddb := newFakeDDB()
	store, mem := newTestCommitStore(ddb)

	_, err := store.Open(ctx, "vec/CURRENT")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "vec/CURRENT", []byte("vec/00000000000000000001.spvc")))
	require.NoError(t, store.Put(ctx, "vec/CURRENT", []byte("vec/00000000000000000002.spvc")))
	assert.Equal(t, "vec/00000000000000000002.spvc", readPointer(t, store, "vec/CURRENT"))

	// pointers never reach the wrapped store
	_, err = mem.Open(ctx, "vec/CURRENT")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	first, err := store.Committed(ctx, "vec/CURRENT", 1)
	require.NoError(t, err)
	assert.Equal(t, "vec/00000000000000000001.spvc", first)

	_, err = store.Committed(ctx, "vec/CURRENT", 9)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// pointers of different vectors are independent
	require.NoError(t, store.Put(ctx, "other/CURRENT", []byte("other/1")))
	assert.Equal(t, "vec/00000000000000000002.spvc", readPointer(t, store, "vec/CURRENT"))
}

func TestDDBCommitStore_ConcurrentModification(t *testing.T) {
	ctx := t.Context()
	ddb := newFakeDDB()
	store, _ := newTestCommitStore(ddb)

	require.NoError(t, store.Put(ctx, "vec/CURRENT", []byte("a")))

	// another writer commits version 2 between our read and our write
	ddb.beforePut = func() {
		_, err := store.Commit(ctx, "vec/CURRENT", "b")
		require.NoError(t, err)
	}
	err := store.Put(ctx, "vec/CURRENT", []byte("c"))
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Equal(t, "b", readPointer(t, store, "vec/CURRENT"))

	// a retry observes the new version and succeeds
	version, err := store.Commit(ctx, "vec/CURRENT", "c")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)
}

func TestDDBCommitStore_PassThroughAndDelete(t *testing.T) {
	ctx := t.Context()
	ddb := newFakeDDB()
	store, mem := newTestCommitStore(ddb)

	require.NoError(t, store.Put(ctx, "vec/00000000000000000001.spvc", []byte("payload")))
	require.NoError(t, store.Put(ctx, "vec/CURRENT", []byte("vec/00000000000000000001.spvc")))

	data, err := blobstore.Get(ctx, mem, "vec/00000000000000000001.spvc")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	names, err := store.List(ctx, "vec/")
	require.NoError(t, err)
	assert.Equal(t, []string{"vec/00000000000000000001.spvc"}, names)

	require.NoError(t, store.Delete(ctx, "vec/CURRENT"))
	_, err = store.Open(ctx, "vec/CURRENT")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "vec/00000000000000000001.spvc"))
	_, err = store.Open(ctx, "vec/00000000000000000001.spvc")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
