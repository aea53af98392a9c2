package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/redis/go-redis/v9"

	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// ErrNotFound is returned when no user exists for the given id.
var ErrNotFound = errors.New("user not found")

// User is the slice of the users table the platform reads.
type User struct {
	ID             string `json:"id" dynamodbav:"id"`
	DisplayName    string `json:"displayName" dynamodbav:"displayName"`
	Role           string `json:"role" dynamodbav:"role"`
	Specialization string `json:"specialization,omitempty" dynamodbav:"specialization,omitempty"`
}

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Directory is a read-only lookup over the users table with a Redis cache in
// front. Names are denormalized onto appointments at creation; the directory
// backfills the rare document that is missing one.
type Directory struct {
	client    dynamoAPI
	tableName string
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *logging.Logger
}

// NewDirectory builds the directory. cache may be nil to disable caching.
func NewDirectory(client dynamoAPI, tableName string, cache *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *Directory {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Directory{
		client:    client,
		tableName: tableName,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Get fetches one user, preferring the cache.
func (d *Directory) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, errors.New("users: id required")
	}

	if d.cache != nil {
		if name, err := d.cache.Get(ctx, displayNameKey(id)).Result(); err == nil && name != "" {
			return &User{ID: id, DisplayName: name}, nil
		} else if err != nil && err != redis.Nil {
			d.logger.Warn("user cache read failed", "user_id", id, "error", err)
		}
	}

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("users: fetch user %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("users: failed to decode user: %w", err)
	}

	if d.cache != nil && user.DisplayName != "" {
		if err := d.cache.Set(ctx, displayNameKey(id), user.DisplayName, d.cacheTTL).Err(); err != nil {
			d.logger.Warn("user cache write failed", "user_id", id, "error", err)
		}
	}
	return &user, nil
}

// DisplayName resolves a user's display name. It satisfies the fan-out's
// NameResolver hook.
func (d *Directory) DisplayName(ctx context.Context, id string) (string, error) {
	user, err := d.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}

func displayNameKey(id string) string {
	return fmt.Sprintf("user:name:%s", id)
}
