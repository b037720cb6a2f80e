package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/devquery-api/internal/domain"
)

// ChatRepo maintains the per-user chat list, keyed (user_id, partner_id).
// Each row is a denormalized summary refreshed on every send and reset by
// mark-read, so listing a user's chats is a single partition query.
type ChatRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChatRepo(client *dynamodb.Client, tableName string) *ChatRepo {
	return &ChatRepo{client: client, tableName: tableName}
}

// TouchOnSend upserts one side of a conversation after a message lands.
// The receiver's row gets its unread counter bumped atomically; the
// sender's row only refreshes the preview.
func (r *ChatRepo) TouchOnSend(ctx context.Context, ownerID, partnerID, preview, senderID string, incrementUnread bool) error {
	expr := "SET #lm = :lm, #ls = :ls, #u = :now"
	names := map[string]string{
		"#lm": fieldLastMessage,
		"#ls": fieldLastSender,
		"#u":  fieldUpdatedAt,
	}
	values := map[string]types.AttributeValue{
		":lm":  &types.AttributeValueMemberS{Value: preview},
		":ls":  &types.AttributeValueMemberS{Value: senderID},
		":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	if incrementUnread {
		expr += " ADD #c :one"
		names["#c"] = fieldUnread
		values[":one"] = &types.AttributeValueMemberN{Value: "1"}
	}
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("user_id", ownerID, "partner_id", partnerID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

// ResetUnread zeroes the unread counter on the reader's row.
func (r *ChatRepo) ResetUnread(ctx context.Context, ownerID, partnerID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", ownerID, "partner_id", partnerID),
		UpdateExpression: aws.String("SET #c = :zero, #u = :now"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldUnread,
			"#u": fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}

// List returns every chat summary owned by the user.
func (r *ChatRepo) List(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var chats []domain.ChatSummary
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}
