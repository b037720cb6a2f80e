package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/devquery-api/internal/domain"
)

// TagRepo provides typed DynamoDB operations for the tags table.
type TagRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTagRepo(client *dynamodb.Client, tableName string) *TagRepo {
	return &TagRepo{client: client, tableName: tableName}
}

func (r *TagRepo) Put(ctx context.Context, t *domain.Tag) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal tag: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TagRepo) Get(ctx context.Context, name string) (*domain.Tag, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("name", name),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("tag not found: %w", domain.ErrNotFound)
	}
	var t domain.Tag
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List scans the whole tags table. Tag cardinality is small and the
// result is cache-friendly, so a scan is acceptable here.
func (r *TagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var tags []domain.Tag
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// AdjustQuestionCount applies an atomic delta to the tag's usage counter,
// creating the row if the tag has never been seen.
func (r *TagRepo) AdjustQuestionCount(ctx context.Context, name string, delta int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("name", name),
		UpdateExpression:         aws.String("ADD question_count :d SET #u = :now"),
		ExpressionAttributeNames: map[string]string{"#u": fieldUpdatedAt},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d":   &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}
