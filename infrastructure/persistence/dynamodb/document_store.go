package dynamodb

import (
	"context"
	"strings"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	methodGetDocument    = "persistence.dynamodb.getDocument"
	methodPutDocument    = "persistence.dynamodb.putDocument"
	methodUpdateDocument = "persistence.dynamodb.updateDocument"
	methodDeleteDocument = "persistence.dynamodb.deleteDocument"
)

// DynamoDBAPI is the slice of the DynamoDB client the store uses
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// DocumentStore implements ports.DocumentStore on a single DynamoDB table
type DocumentStore[T any] struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewDocumentStore creates a store bound to tableName
func NewDocumentStore[T any](client DynamoDBAPI, tableName string, logger *zap.Logger) *DocumentStore[T] {
	return &DocumentStore[T]{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// NewTodoRepository creates the todo document store
func NewTodoRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) ports.TodoRepository {
	return NewDocumentStore[entities.Todo](client, tableName, logger)
}

// Get fetches the record stored under key
func (s *DocumentStore[T]) Get(ctx context.Context, key ports.Key) (*T, error) {
	avKey, err := attributevalue.MarshalMap(key)
	if err != nil {
		return nil, errors.Raise(err, methodGetDocument, errors.ClassInternal)
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       avKey,
	})
	if err != nil {
		s.logger.Error("Failed to get document",
			zap.String("table", s.tableName),
			zap.Any("key", key),
			zap.Error(err),
		)
		return nil, errors.Raise(err, methodGetDocument, errors.ClassInternal)
	}

	if len(result.Item) == 0 {
		return nil, nil
	}

	var item T
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, errors.Raise(err, methodGetDocument, errors.ClassInternal)
	}
	return &item, nil
}

// Put writes the full item, replacing any existing one
func (s *DocumentStore[T]) Put(ctx context.Context, item T) (T, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return item, errors.Raise(err, methodPutDocument, errors.ClassInternal)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to put document",
			zap.String("table", s.tableName),
			zap.Error(err),
		)
		return item, errors.Raise(err, methodPutDocument, errors.ClassInternal)
	}

	return item, nil
}

// Update applies expression with values re-keyed to their placeholders
func (s *DocumentStore[T]) Update(ctx context.Context, key ports.Key, expression string, values ports.Document) (ports.Document, error) {
	avKey, err := attributevalue.MarshalMap(key)
	if err != nil {
		return nil, errors.Raise(err, methodUpdateDocument, errors.ClassInternal)
	}
	avValues, err := attributevalue.MarshalMap(RemapPrefixVariables(values))
	if err != nil {
		return nil, errors.Raise(err, methodUpdateDocument, errors.ClassInternal)
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       avKey,
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeValues: avValues,
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		s.logger.Error("Failed to update document",
			zap.String("table", s.tableName),
			zap.Any("key", key),
			zap.Error(err),
		)
		return nil, errors.Raise(err, methodUpdateDocument, errors.ClassInternal)
	}

	changed := ports.Document{}
	if len(result.Attributes) == 0 {
		return changed, nil
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, &changed); err != nil {
		return nil, errors.Raise(err, methodUpdateDocument, errors.ClassInternal)
	}
	return changed, nil
}

// Delete removes the record stored under key
func (s *DocumentStore[T]) Delete(ctx context.Context, key ports.Key) error {
	avKey, err := attributevalue.MarshalMap(key)
	if err != nil {
		return errors.Raise(err, methodDeleteDocument, errors.ClassInternal)
	}

	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       avKey,
	}); err != nil {
		s.logger.Error("Failed to delete document",
			zap.String("table", s.tableName),
			zap.Any("key", key),
			zap.Error(err),
		)
		return errors.Raise(err, methodDeleteDocument, errors.ClassInternal)
	}
	return nil
}

// RemapPrefixVariables prefixes every key with ":" so values line up with
// the placeholders of a "set f = :f" expression. Keys already prefixed
// are kept as is.
func RemapPrefixVariables(values map[string]any) map[string]any {
	remapped := make(map[string]any, len(values))
	for k, v := range values {
		if !strings.HasPrefix(k, ":") {
			k = ":" + k
		}
		remapped[k] = v
	}
	return remapped
}
