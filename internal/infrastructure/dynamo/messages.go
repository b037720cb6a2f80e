package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/devquery-api/internal/domain"
)

// MessageRepo provides typed DynamoDB operations for the messages table.
type MessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageRepo(client *dynamodb.Client, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

func (r *MessageRepo) Put(ctx context.Context, m *domain.Message) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListConversation returns a page of the conversation's messages, newest
// first. cursor carries the GSI sort position as "created_at|message_id",
// base64-encoded; conversation_id is implied by the query.
func (r *MessageRepo) ListConversation(ctx context.Context, conversationID string, limit int32, cursor string) ([]domain.Message, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("conversation_id-created_at-index"),
		KeyConditionExpression: aws.String("conversation_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: conversationID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		createdAt, messageID, ok := strings.Cut(decoded, "|")
		if !ok {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"conversation_id": &types.AttributeValueMemberS{Value: conversationID},
			"created_at":      &types.AttributeValueMemberS{Value: createdAt},
			"message_id":      &types.AttributeValueMemberS{Value: messageID},
		}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var messages []domain.Message
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &messages); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if len(out.LastEvaluatedKey) > 0 {
		createdAt, _ := out.LastEvaluatedKey["created_at"].(*types.AttributeValueMemberS)
		messageID, _ := out.LastEvaluatedKey["message_id"].(*types.AttributeValueMemberS)
		if createdAt != nil && messageID != nil {
			nextCursor = encodeCursor(createdAt.Value + "|" + messageID.Value)
		}
	}
	return messages, nextCursor, nil
}

// ListUnreadFrom returns the unread messages a partner sent to the reader.
func (r *MessageRepo) ListUnreadFrom(ctx context.Context, conversationID, readerID string) ([]domain.Message, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("conversation_id-created_at-index"),
		KeyConditionExpression: aws.String("conversation_id = :cid"),
		FilterExpression:       aws.String("receiver_id = :rid AND #r = :false"),
		ExpressionAttributeNames: map[string]string{
			"#r": fieldRead,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid":   &types.AttributeValueMemberS{Value: conversationID},
			":rid":   &types.AttributeValueMemberS{Value: readerID},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flags a single message as read.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldRead: true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("message_id", messageID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
