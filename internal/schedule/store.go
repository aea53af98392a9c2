package schedule

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

const doctorIndex = "doctorId-index"

// ErrStoreUnavailable wraps transport-level faults from the backing store.
var ErrStoreUnavailable = errors.New("schedule store unavailable")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store persists weekly doctor schedules to DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("schedule: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("schedule: table name cannot be empty")
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

// Save inserts a new schedule block for a doctor.
func (s *Store) Save(ctx context.Context, sched *Schedule) (*Schedule, error) {
	if sched == nil {
		return nil, errors.New("schedule: schedule cannot be nil")
	}
	if sched.DoctorID == "" || sched.Day == "" {
		return nil, errors.New("schedule: doctorId and day are required")
	}
	if _, ok := dayOrder[sched.Day]; !ok {
		return nil, fmt.Errorf("schedule: unknown day %q", sched.Day)
	}
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	now := timeutil.Now()
	sched.CreatedAt = now
	sched.UpdatedAt = now

	item, err := attributevalue.MarshalMap(sched)
	if err != nil {
		return nil, fmt.Errorf("schedule: failed to marshal schedule: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: persist schedule: %v", ErrStoreUnavailable, err)
	}
	return sched, nil
}

// ListByDoctor returns a doctor's schedule blocks in weekday order, Monday
// first, skipping soft-deleted entries.
func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]*Schedule, error) {
	if doctorID == "" {
		return nil, errors.New("schedule: doctorId required")
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(doctorIndex),
		KeyConditionExpression:    aws.String("doctorId = :doc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":doc": &types.AttributeValueMemberS{Value: doctorID}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query schedules: %v", ErrStoreUnavailable, err)
	}

	scheds := make([]*Schedule, 0, len(out.Items))
	for _, item := range out.Items {
		var sched Schedule
		if err := attributevalue.UnmarshalMap(item, &sched); err != nil {
			return nil, fmt.Errorf("schedule: failed to decode schedule: %w", err)
		}
		if sched.IsDeleted {
			continue
		}
		scheds = append(scheds, &sched)
	}

	sort.SliceStable(scheds, func(i, j int) bool {
		return dayOrder[scheds[i].Day] < dayOrder[scheds[j].Day]
	})
	return scheds, nil
}

// Delete soft-deletes a schedule block so historic availability stays
// auditable.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("schedule: id required")
	}

	deletedAt, err := attributevalue.Marshal(timeutil.Now())
	if err != nil {
		return fmt.Errorf("schedule: failed to marshal deletedAt: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET isDeleted = :true, deletedAt = :deletedAt"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":      &types.AttributeValueMemberBOOL{Value: true},
			":deletedAt": deletedAt,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: delete schedule %s: %v", ErrStoreUnavailable, id, err)
	}
	return nil
}
