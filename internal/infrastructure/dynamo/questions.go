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

// QuestionRepo provides typed DynamoDB operations for the questions table.
type QuestionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewQuestionRepo(client *dynamodb.Client, tableName string) *QuestionRepo {
	return &QuestionRepo{client: client, tableName: tableName}
}

func (r *QuestionRepo) Put(ctx context.Context, q *domain.Question) error {
	item, err := attributevalue.MarshalMap(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *QuestionRepo) Get(ctx context.Context, questionID string) (*domain.Question, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("question_id", questionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("question not found: %w", domain.ErrNotFound)
	}
	var q domain.Question
	if err := attributevalue.UnmarshalMap(out.Item, &q); err != nil {
		return nil, err
	}
	if q.Enable == 0 {
		return nil, fmt.Errorf("question deleted: %w", domain.ErrNotFound)
	}
	return &q, nil
}

func (r *QuestionRepo) Update(ctx context.Context, questionID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("question_id", questionID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *QuestionRepo) SoftDelete(ctx context.Context, questionID string) error {
	return r.Update(ctx, questionID, map[string]interface{}{
		fieldEnable:    0,
		fieldDeletedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// AdjustScore applies an atomic delta to the running vote score.
func (r *QuestionRepo) AdjustScore(ctx context.Context, questionID string, delta int) error {
	return r.addCounter(ctx, questionID, "score", delta)
}

// AdjustAnswerCount keeps the denormalized answer counter in sync.
func (r *QuestionRepo) AdjustAnswerCount(ctx context.Context, questionID string, delta int) error {
	return r.addCounter(ctx, questionID, "answer_count", delta)
}

func (r *QuestionRepo) addCounter(ctx context.Context, questionID, attr string, delta int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("question_id", questionID),
		UpdateExpression:         aws.String("ADD #c :d"),
		ExpressionAttributeNames: map[string]string{"#c": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
		},
	})
	return err
}

// ScanPage returns a page of visible questions, optionally restricted to
// a tag. cursor is a base64-encoded question_id used as ExclusiveStartKey.
func (r *QuestionRepo) ScanPage(ctx context.Context, limit int32, cursor, tag string) ([]domain.Question, string, error) {
	filter := "#e = :one"
	names := map[string]string{"#e": fieldEnable}
	values := map[string]types.AttributeValue{
		":one": &types.AttributeValueMemberN{Value: "1"},
	}
	if tag != "" {
		filter += " AND contains(tags, :tag)"
		values[":tag"] = &types.AttributeValueMemberS{Value: tag}
	}
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(limit),
	}
	if cursor != "" {
		questionID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("question_id", questionID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var questions []domain.Question
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &questions); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["question_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return questions, nextCursor, nil
}

// ListByAuthor returns the author's questions newest first.
func (r *QuestionRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Question, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("author_id-created_at-index"),
		KeyConditionExpression: aws.String("author_id = :aid"),
		FilterExpression:       aws.String("#e = :one"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: authorID},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var questions []domain.Question
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
