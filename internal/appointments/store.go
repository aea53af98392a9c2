package appointments

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

const (
	doctorIndex  = "doctorId-index"
	patientIndex = "patientId-index"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store persists appointments to DynamoDB. It is the only component that
// touches the appointments table directly; it performs no retries and
// surfaces store faults unmodified to the caller.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
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

// Create inserts a new appointment in the pending state, stamping id and
// creation timestamps.
func (s *Store) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	if appt == nil {
		return nil, errors.New("appointments: appointment cannot be nil")
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := timeutil.Now()
	appt.Status = StatusPending
	appt.CreatedAt = now
	appt.UpdatedAt = now

	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to marshal appointment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: persist appointment: %v", ErrStoreUnavailable, err)
	}
	return appt, nil
}

// GetByID fetches a single appointment.
func (s *Store) GetByID(ctx context.Context, id string) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointments: id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch appointment: %v", ErrStoreUnavailable, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointment: %w", err)
	}
	return &appt, nil
}

// ListByParty returns every appointment where the given user is the doctor or
// the patient, newest first. The full set is returned; pagination is left to
// the store's page size, which comfortably covers a single party's history.
func (s *Store) ListByParty(ctx context.Context, partyID string, role Role) ([]*Appointment, error) {
	if partyID == "" {
		return nil, errors.New("appointments: party id required")
	}

	index, key := patientIndex, "patientId"
	if role == RoleDoctor {
		index, key = doctorIndex, "doctorId"
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#p = :party"),
		ExpressionAttributeNames:  map[string]string{"#p": key},
		ExpressionAttributeValues: map[string]types.AttributeValue{":party": &types.AttributeValueMemberS{Value: partyID}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query appointments: %v", ErrStoreUnavailable, err)
	}

	appts := make([]*Appointment, 0, len(out.Items))
	for _, item := range out.Items {
		var appt Appointment
		if err := attributevalue.UnmarshalMap(item, &appt); err != nil {
			return nil, fmt.Errorf("appointments: failed to decode appointment: %w", err)
		}
		appts = append(appts, &appt)
	}

	// The index projection does not guarantee order; sort newest first the
	// way the dashboard clients always did.
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].CreatedAt.Time().After(appts[j].CreatedAt.Time())
	})
	return appts, nil
}

// ApplyTransition merges the patch into the stored document and stamps
// updatedAt, conditioned on the stored status still matching expected. The
// condition is the compare-and-swap that closes the read-validate-write race:
// the losing writer of two concurrent transitions gets
// ErrConcurrentModification instead of silently overwriting.
func (s *Store) ApplyTransition(ctx context.Context, id string, patch map[string]any, expected Status) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointments: id required")
	}
	if len(patch) == 0 {
		return nil, errors.New("appointments: empty transition patch")
	}

	patch["updatedAt"] = timeutil.Now()

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	expr := "SET "
	for i, k := range keys {
		av, err := attributevalue.Marshal(patch[k])
		if err != nil {
			return nil, fmt.Errorf("appointments: failed to marshal patch field %s: %w", k, err)
		}
		alias := "#" + k
		names[alias] = k
		values[":"+k] = av
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("%s = :%s", alias, k)
	}

	names["#status"] = "status"
	values[":expected"] = &types.AttributeValueMemberS{Value: string(expected)}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(id) AND #status = :expected"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, s.classifyConditionFailure(ctx, id)
		}
		return nil, fmt.Errorf("%w: update appointment %s: %v", ErrStoreUnavailable, id, err)
	}

	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Attributes, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode updated appointment: %w", err)
	}
	return &appt, nil
}

// classifyConditionFailure distinguishes a missing document from a lost
// compare-and-swap race after a conditional write is rejected.
func (s *Store) classifyConditionFailure(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return ErrConcurrentModification
}
