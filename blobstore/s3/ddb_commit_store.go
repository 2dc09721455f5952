package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/sparsevec/blobstore"
)

// PointerName is the base name of the blobs routed through DynamoDB.
const PointerName = "CURRENT"

// DDBClient is the subset of the DynamoDB API used by DDBCommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrConcurrentModification is returned when another writer committed the
// same pointer version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// DDBCommitStore wraps a blob store and routes pointer blobs (names whose
// base name is CURRENT) through DynamoDB.
//
// S3 has no compare-and-swap, so two writers racing on the same pointer
// could silently lose an update. Every pointer write here is a new item
// version guarded by attribute_not_exists(version); the loser gets
// ErrConcurrentModification.
//
// Table layout: partition key base_uri (S), sort key version (N).
type DDBCommitStore struct {
	store     blobstore.BlobStore
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// NewDDBCommitStore creates a new commit store.
// The baseURI (e.g. "s3://bucket/prefix") namespaces the partition keys.
func NewDDBCommitStore(store blobstore.BlobStore, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		store:     store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   strings.TrimSuffix(baseURI, "/"),
	}
}

func isPointer(name string) bool {
	return path.Base(name) == PointerName
}

func (s *DDBCommitStore) partitionKey(name string) string {
	return s.baseURI + "/" + name
}

// Open opens a blob for reading. Pointers resolve to their latest version.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if !isPointer(name) {
		return s.store.Open(ctx, name)
	}
	version, target, err := s.latest(ctx, name)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return &pointerBlob{content: []byte(target)}, nil
}

// Put writes a blob. Pointer writes are conditional DynamoDB commits.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if !isPointer(name) {
		return s.store.Put(ctx, name, data)
	}
	_, err := s.Commit(ctx, name, string(data))
	return err
}

// Delete deletes a blob. Deleting a pointer removes its whole history.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	if !isPointer(name) {
		return s.store.Delete(ctx, name)
	}

	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
		},
	})
	if err != nil {
		return fmt.Errorf("ddb: query %s: %w", name, err)
	}
	for _, item := range resp.Items {
		_, err := s.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"base_uri": item["base_uri"],
				"version":  item["version"],
			},
		})
		if err != nil {
			return fmt.Errorf("ddb: delete %s: %w", name, err)
		}
	}
	return nil
}

// List lists the blobs of the wrapped store.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.store.List(ctx, prefix)
}

// Commit atomically publishes target as the next version of the pointer
// and returns that version.
func (s *DDBCommitStore) Commit(ctx context.Context, name, target string) (uint64, error) {
	current, _, err := s.latest(ctx, name)
	if err != nil {
		return 0, err
	}
	next := current + 1

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"target":   &types.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentModification
		}
		return 0, fmt.Errorf("ddb: commit %s: %w", name, err)
	}
	return next, nil
}

// Committed returns the target recorded for a specific pointer version.
func (s *DDBCommitStore) Committed(ctx context.Context, name string, version uint64) (string, error) {
	resp, err := s.ddbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ddb: get %s@%d: %w", name, version, err)
	}
	if len(resp.Item) == 0 {
		return "", blobstore.ErrNotFound
	}
	target, ok := resp.Item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("ddb: invalid target attribute")
	}
	return target.Value, nil
}

// latest returns the newest version and target of a pointer, or version 0
// when it was never committed.
func (s *DDBCommitStore) latest(ctx context.Context, name string) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("ddb: query %s: %w", name, err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("ddb: invalid version attribute")
	}
	targetAttr, ok := item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("ddb: invalid target attribute")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("ddb: parse version: %w", err)
	}
	return version, targetAttr.Value, nil
}

// pointerBlob serves the resolved pointer content from memory.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error {
	return nil
}

func (b *pointerBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return bytes.NewReader(b.content).ReadAt(p, off)
}
