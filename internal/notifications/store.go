package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/healthbridge/telehealth-platform/internal/timeutil"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

const userIndex = "userId-index"

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store persists notifications to DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("notifications: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("notifications: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create inserts an unread notification, stamping id and createdAt.
func (s *Store) Create(ctx context.Context, n *Notification) (*Notification, error) {
	if n == nil {
		return nil, errors.New("notifications: notification cannot be nil")
	}
	if n.UserID == "" {
		return nil, errors.New("notifications: userId required")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Read = false
	n.CreatedAt = timeutil.Now()

	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return nil, fmt.Errorf("notifications: failed to marshal notification: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: persist notification: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// ListByUser returns a recipient's notifications, newest first. unreadOnly
// narrows the result to unread entries.
func (s *Store) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error) {
	if userID == "" {
		return nil, errors.New("notifications: userId required")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(userIndex),
		KeyConditionExpression:    aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
	}
	if unreadOnly {
		input.FilterExpression = aws.String("#read = :false")
		input.ExpressionAttributeNames = map[string]string{"#read": "read"}
		input.ExpressionAttributeValues[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: query notifications: %v", ErrStoreUnavailable, err)
	}

	items := make([]*Notification, 0, len(out.Items))
	for _, item := range out.Items {
		var n Notification
		if err := attributevalue.UnmarshalMap(item, &n); err != nil {
			return nil, fmt.Errorf("notifications: failed to decode notification: %w", err)
		}
		items = append(items, &n)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Time().After(items[j].CreatedAt.Time())
	})
	return items, nil
}

// MarkRead marks a single notification read, scoped to the recipient. A miss
// on either the id or the recipient comes back as ErrNotFound so one user
// cannot flip another user's inbox.
func (s *Store) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return errors.New("notifications: id and userId required")
	}

	now := timeutil.Now()
	readAt, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("notifications: failed to marshal readAt: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:         aws.String("SET #read = :true, readAt = :readAt"),
		ConditionExpression:      aws.String("attribute_exists(id) AND userId = :uid"),
		ExpressionAttributeNames: map[string]string{"#read": "read"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":   &types.AttributeValueMemberBOOL{Value: true},
			":readAt": readAt,
			":uid":    &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: mark notification read: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// MarkAllRead marks every unread notification for the recipient and returns
// how many were updated.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.ListByUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, n := range unread {
		if err := s.MarkRead(ctx, n.ID, userID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}
