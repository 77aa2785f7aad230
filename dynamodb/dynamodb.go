// Package dynamodb caches fused documents in a DynamoDB table keyed by the
// checksum of their inputs.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

const (
	keyAttribute      = "Checksum"
	documentAttribute = "JSONDocument"
	timeAttribute     = "Timestamp"

	attempts = 3
	delay    = 200 * time.Millisecond
)

// Cache stores encoded documents by checksum.
type Cache struct {
	svc   dynamodbiface.DynamoDBAPI
	table string
	now   func() time.Time
}

// New returns a Cache on table.
func New(sess *session.Session, table string) *Cache {
	return NewWithClient(dynamodb.New(sess), table)
}

// NewWithClient returns a Cache using the given client.
func NewWithClient(svc dynamodbiface.DynamoDBAPI, table string) *Cache {
	return &Cache{svc: svc, table: table, now: time.Now}
}

// CreateTable creates the cache table. An existing table is not an error.
func (c *Cache) CreateTable(ctx context.Context) error {
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String(keyAttribute),
				AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String(keyAttribute),
				KeyType:       aws.String(dynamodb.KeyTypeHash),
			},
		},
		TableName:   aws.String(c.table),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
	}
	_, err := c.svc.CreateTableWithContext(ctx, input)
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeResourceInUseException {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", c.table, err)
	}
	return nil
}

// Get returns the document stored under checksum, or nil if there is none.
func (c *Cache) Get(ctx context.Context, checksum string) ([]byte, error) {
	input := &dynamodb.GetItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			keyAttribute: {S: aws.String(checksum)},
		},
		ProjectionExpression: aws.String(documentAttribute),
		TableName:            aws.String(c.table),
	}
	var output *dynamodb.GetItemOutput
	err := c.do(ctx, func() error {
		var err error
		output, err = c.svc.GetItemWithContext(ctx, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	document, ok := output.Item[documentAttribute]
	if !ok {
		return nil, nil
	}
	return document.B, nil
}

// Put stores document under checksum, replacing any earlier entry.
func (c *Cache) Put(ctx context.Context, checksum string, document []byte) error {
	input := &dynamodb.PutItemInput{
		Item: map[string]*dynamodb.AttributeValue{
			keyAttribute:      {S: aws.String(checksum)},
			documentAttribute: {B: document},
			timeAttribute:     {S: aws.String(c.now().UTC().Format(time.RFC3339))},
		},
		TableName: aws.String(c.table),
	}
	err := c.do(ctx, func() error {
		_, err := c.svc.PutItemWithContext(ctx, input)
		return err
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (c *Cache) do(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

// retryable reports whether a request failed for a reason that may pass.
// Validation and missing-table errors do not.
func retryable(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return !errors.Is(err, context.Canceled)
	}
	switch aerr.Code() {
	case dynamodb.ErrCodeResourceNotFoundException, "ValidationException", "AccessDeniedException":
		return false
	}
	return true
}
