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

// AnswerRepo provides typed DynamoDB operations for the answers table.
type AnswerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAnswerRepo(client *dynamodb.Client, tableName string) *AnswerRepo {
	return &AnswerRepo{client: client, tableName: tableName}
}

func (r *AnswerRepo) Put(ctx context.Context, a *domain.Answer) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AnswerRepo) Get(ctx context.Context, answerID string) (*domain.Answer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("answer_id", answerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("answer not found: %w", domain.ErrNotFound)
	}
	var a domain.Answer
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	if a.Enable == 0 {
		return nil, fmt.Errorf("answer deleted: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (r *AnswerRepo) Update(ctx context.Context, answerID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("answer_id", answerID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *AnswerRepo) SoftDelete(ctx context.Context, answerID string) error {
	return r.Update(ctx, answerID, map[string]interface{}{
		fieldEnable:    0,
		fieldDeletedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// AdjustScore applies an atomic delta to the running vote score.
func (r *AnswerRepo) AdjustScore(ctx context.Context, answerID string, delta int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("answer_id", answerID),
		UpdateExpression:         aws.String("ADD #c :d"),
		ExpressionAttributeNames: map[string]string{"#c": "score"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
		},
	})
	return err
}

// ListByQuestion returns the question's answers oldest first, so accepted
// ordering and re-sorting stay a presentation concern.
func (r *AnswerRepo) ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("question_id-created_at-index"),
		KeyConditionExpression: aws.String("question_id = :qid"),
		FilterExpression:       aws.String("#e = :one"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qid": &types.AttributeValueMemberS{Value: questionID},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return nil, err
	}
	var answers []domain.Answer
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// ListByAuthor returns the author's answers newest first.
func (r *AnswerRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Answer, error) {
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
	var answers []domain.Answer
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
