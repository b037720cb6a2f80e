package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/devquery-api/internal/domain"
)

// FollowRepo provides typed DynamoDB operations for the follows table,
// keyed (follower_id, followee_id).
type FollowRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFollowRepo(client *dynamodb.Client, tableName string) *FollowRepo {
	return &FollowRepo{client: client, tableName: tableName}
}

func (r *FollowRepo) Put(ctx context.Context, f *domain.Follow) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal follow: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FollowRepo) Get(ctx context.Context, followerID, followeeID string) (*domain.Follow, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("follower_id", followerID, "followee_id", followeeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("follow not found: %w", domain.ErrNotFound)
	}
	var f domain.Follow
	if err := attributevalue.UnmarshalMap(out.Item, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FollowRepo) Delete(ctx context.Context, followerID, followeeID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("follower_id", followerID, "followee_id", followeeID),
	})
	return err
}

// ListFollowing returns everyone the user follows.
func (r *FollowRepo) ListFollowing(ctx context.Context, followerID string) ([]domain.Follow, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("follower_id = :fid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fid": &types.AttributeValueMemberS{Value: followerID},
		},
	})
	if err != nil {
		return nil, err
	}
	var follows []domain.Follow
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

// ListFollowers returns everyone following the user, via the followee GSI.
func (r *FollowRepo) ListFollowers(ctx context.Context, followeeID string) ([]domain.Follow, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("followee_id-index"),
		KeyConditionExpression: aws.String("followee_id = :fid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fid": &types.AttributeValueMemberS{Value: followeeID},
		},
	})
	if err != nil {
		return nil, err
	}
	var follows []domain.Follow
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}
