package dynamodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"biolink-gateway/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	entrySortKey  = "ENTRY"
	batchSize     = 25
	maxBatchRetry = 5

	encodingGzip = "gzip"

	// MaxValueBytes keeps an item under DynamoDB's 400KB limit with room
	// for the key and bookkeeping attributes.
	MaxValueBytes = 380 * 1024
)

// SkipObserver is told about entries the cache declined to store
type SkipObserver interface {
	ObserveCacheSkip(cache, reason string)
}

type nopSkipObserver struct{}

func (nopSkipObserver) ObserveCacheSkip(string, string) {}

// Client is the subset of the DynamoDB API the snapshot cache needs
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// CacheRecord is one cache entry as stored in DynamoDB
type CacheRecord struct {
	PK        string `dynamodbav:"PK"`        // <prefix><key>
	SK        string `dynamodbav:"SK"`        // ENTRY
	Value     []byte `dynamodbav:"Value"`     // encoded snapshot
	Encoding  string `dynamodbav:"Encoding"`  // "gzip", or empty for raw values
	CreatedAt string `dynamodbav:"CreatedAt"` // RFC3339 timestamp
	ExpiresAt int64  `dynamodbav:"ExpiresAt"` // Unix seconds, checked on read
	TTL       int64  `dynamodbav:"TTL"`       // Unix timestamp for DynamoDB TTL
}

// SnapshotCache is a ports.Cache persisted in a DynamoDB table so cached
// neighborhoods survive process restarts. DynamoDB removes expired items
// lazily, so expiry is also enforced on read.
type SnapshotCache struct {
	client    Client
	tableName string
	prefix    string
	clock     ports.Clock
	skips     SkipObserver
	logger    *zap.Logger
}

// NewSnapshotCache creates a new DynamoDB backed cache. Keys are namespaced
// by prefix so several caches can share a table.
func NewSnapshotCache(client Client, tableName, prefix string, clock ports.Clock, skips SkipObserver, logger *zap.Logger) *SnapshotCache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if skips == nil {
		skips = nopSkipObserver{}
	}
	return &SnapshotCache{
		client:    client,
		tableName: tableName,
		prefix:    prefix,
		clock:     clock,
		skips:     skips,
		logger:    logger,
	}
}

// Get retrieves an unexpired value
func (c *SnapshotCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            c.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var record CacheRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache item: %w", err)
	}

	if c.clock.Now().Unix() >= record.ExpiresAt {
		return nil, false, nil
	}

	value, err := decodeValue(record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cache item: %w", err)
	}
	return value, true, nil
}

// Set stores a gzip-compressed value that expires after ttl. Values still
// larger than MaxValueBytes once compressed are skipped, not stored.
func (c *SnapshotCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.clock.Now()
	expiresAt := now.Add(ttl)

	compressed, err := compress(value)
	if err != nil {
		return fmt.Errorf("failed to compress cache item: %w", err)
	}
	if len(compressed) > MaxValueBytes {
		c.skips.ObserveCacheSkip(c.tableName, "too_large")
		c.logger.Info("Cache item too large to store",
			zap.String("key", key),
			zap.Int("bytes", len(value)),
			zap.Int("compressedBytes", len(compressed)),
		)
		return nil
	}

	item, err := attributevalue.MarshalMap(CacheRecord{
		PK:        c.prefix + key,
		SK:        entrySortKey,
		Value:     compressed,
		Encoding:  encodingGzip,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: expiresAt.Unix(),
		TTL:       expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache item: %w", err)
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put cache item: %w", err)
	}

	c.logger.Debug("Cache item stored",
		zap.String("key", key),
		zap.Int("bytes", len(value)),
		zap.Int("compressedBytes", len(compressed)),
		zap.Time("expiresAt", expiresAt),
	)
	return nil
}

// Delete removes a value
func (c *SnapshotCache) Delete(ctx context.Context, key string) error {
	if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(key),
	}); err != nil {
		return fmt.Errorf("failed to delete cache item: %w", err)
	}
	return nil
}

// Clear removes every entry under this cache's prefix
func (c *SnapshotCache) Clear(ctx context.Context) error {
	paginator := dynamodb.NewScanPaginator(c.client, &dynamodb.ScanInput{
		TableName:            aws.String(c.tableName),
		ProjectionExpression: aws.String("PK, SK"),
		FilterExpression:     aws.String("begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: c.prefix},
		},
	})

	var pending []types.WriteRequest
	deleted := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan cache items: %w", err)
		}

		for _, item := range page.Items {
			pending = append(pending, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
					"PK": item["PK"],
					"SK": item["SK"],
				}},
			})
			if len(pending) == batchSize {
				if err := c.batchDelete(ctx, pending); err != nil {
					return err
				}
				deleted += len(pending)
				pending = nil
			}
		}
	}

	if len(pending) > 0 {
		if err := c.batchDelete(ctx, pending); err != nil {
			return err
		}
		deleted += len(pending)
	}

	c.logger.Info("Cache cleared",
		zap.String("table", c.tableName),
		zap.String("prefix", c.prefix),
		zap.Int("deleted", deleted),
	)
	return nil
}

func (c *SnapshotCache) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	for attempt := 0; len(requests) > 0; attempt++ {
		if attempt == maxBatchRetry {
			return fmt.Errorf("failed to delete %d cache items after %d attempts", len(requests), attempt)
		}

		out, err := c.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{c.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("failed to batch delete cache items: %w", err)
		}
		requests = out.UnprocessedItems[c.tableName]
	}
	return nil
}

func (c *SnapshotCache) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: c.prefix + key},
		"SK": &types.AttributeValueMemberS{Value: entrySortKey},
	}
}

func compress(value []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue(record CacheRecord) ([]byte, error) {
	switch record.Encoding {
	case "":
		return record.Value, nil
	case encodingGzip:
		zr, err := gzip.NewReader(bytes.NewReader(record.Value))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("unknown encoding %q", record.Encoding)
	}
}
