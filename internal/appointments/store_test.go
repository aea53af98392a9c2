package appointments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/healthbridge/telehealth-platform/internal/timeutil"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

func TestStore_CreatePersistsDefaults(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "appointments", logging.Default())

	appt := &Appointment{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		Type:      TypeVideo,
	}

	created, err := store.Create(context.Background(), appt)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}

	var stored Appointment
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored appointment: %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("expected status pending, got %s", stored.Status)
	}
	if stored.CreatedAt.Seconds == 0 || stored.UpdatedAt.Seconds == 0 {
		t.Fatal("expected timestamps to be populated")
	}

	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(id)" {
		t.Fatalf("expected condition expression to prevent overwrites, got %v", expr)
	}
}

func TestStore_CreateNilAppointment(t *testing.T) {
	store := NewStore(&mockDynamo{}, "appointments", logging.Default())
	if _, err := store.Create(context.Background(), nil); err == nil {
		t.Fatal("expected error when appointment is nil")
	}
}

func TestStore_CreateStoreFault(t *testing.T) {
	mock := &mockDynamo{putErr: errors.New("dynamo down")}
	store := NewStore(mock, "appointments", logging.Default())

	_, err := store.Create(context.Background(), &Appointment{PatientID: "p", DoctorID: "d"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStore_GetByID(t *testing.T) {
	mock := &mockDynamo{
		getOutput: &dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"id":     &types.AttributeValueMemberS{Value: "apt-42"},
				"status": &types.AttributeValueMemberS{Value: string(StatusConfirmed)},
			},
		},
	}
	store := NewStore(mock, "appointments", logging.Default())

	appt, err := store.GetByID(context.Background(), "apt-42")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if appt.ID != "apt-42" || appt.Status != StatusConfirmed {
		t.Fatalf("unexpected appointment: %#v", appt)
	}
}

func TestStore_GetByIDNotFound(t *testing.T) {
	store := NewStore(&mockDynamo{getOutput: &dynamodb.GetItemOutput{}}, "appointments", logging.Default())
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetByIDStoreFault(t *testing.T) {
	store := NewStore(&mockDynamo{getErr: errors.New("timeout")}, "appointments", logging.Default())
	_, err := store.GetByID(context.Background(), "apt-1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStore_ListByPartyUsesRoleIndex(t *testing.T) {
	older := timeutil.FromTime(time.Now().Add(-time.Hour))
	newer := timeutil.FromTime(time.Now())

	mock := &mockDynamo{
		queryOutput: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				mustMarshal(t, &Appointment{ID: "old", DoctorID: "doc-1", CreatedAt: older}),
				mustMarshal(t, &Appointment{ID: "new", DoctorID: "doc-1", CreatedAt: newer}),
			},
		},
	}
	store := NewStore(mock, "appointments", logging.Default())

	appts, err := store.ListByParty(context.Background(), "doc-1", RoleDoctor)
	if err != nil {
		t.Fatalf("ListByParty returned error: %v", err)
	}

	if idx := mock.queryInput.IndexName; idx == nil || *idx != doctorIndex {
		t.Fatalf("expected doctor index, got %v", idx)
	}
	if names := mock.queryInput.ExpressionAttributeNames; names["#p"] != "doctorId" {
		t.Fatalf("expected doctorId key, got %v", names)
	}
	if len(appts) != 2 || appts[0].ID != "new" {
		t.Fatalf("expected newest-first ordering, got %v, %v", appts[0].ID, appts[1].ID)
	}
}

func TestStore_ApplyTransitionGuardsOnExpectedStatus(t *testing.T) {
	mock := &mockDynamo{
		updateOutput: &dynamodb.UpdateItemOutput{
			Attributes: mustMarshal(t, &Appointment{ID: "apt-1", Status: StatusConfirmed}),
		},
	}
	store := NewStore(mock, "appointments", logging.Default())

	appt, err := store.ApplyTransition(context.Background(), "apt-1",
		map[string]any{"status": StatusConfirmed, "confirmedBy": "doc-1"}, StatusPending)
	if err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if appt.Status != StatusConfirmed {
		t.Fatalf("expected updated appointment back, got %#v", appt)
	}

	update := mock.updateInputs[0]
	if cond := update.ConditionExpression; cond == nil || *cond != "attribute_exists(id) AND #status = :expected" {
		t.Fatalf("expected compare-and-swap condition, got %v", cond)
	}
	expected := update.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
	if expected != string(StatusPending) {
		t.Fatalf("expected prior status pending, got %s", expected)
	}
	if !strings.Contains(*update.UpdateExpression, "#updatedAt = :updatedAt") {
		t.Fatalf("expected updatedAt stamp in expression, got %s", *update.UpdateExpression)
	}
}

func TestStore_ApplyTransitionLoserGetsConflict(t *testing.T) {
	mock := &mockDynamo{
		updateErr: &types.ConditionalCheckFailedException{},
		getOutput: &dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"id":     &types.AttributeValueMemberS{Value: "apt-1"},
				"status": &types.AttributeValueMemberS{Value: string(StatusConfirmed)},
			},
		},
	}
	store := NewStore(mock, "appointments", logging.Default())

	_, err := store.ApplyTransition(context.Background(), "apt-1",
		map[string]any{"status": StatusRejected}, StatusPending)
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestStore_ApplyTransitionMissingDocument(t *testing.T) {
	mock := &mockDynamo{
		updateErr: &types.ConditionalCheckFailedException{},
		getOutput: &dynamodb.GetItemOutput{},
	}
	store := NewStore(mock, "appointments", logging.Default())

	_, err := store.ApplyTransition(context.Background(), "gone",
		map[string]any{"status": StatusConfirmed}, StatusPending)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func mustMarshal(t *testing.T, appt *Appointment) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return item
}

type mockDynamo struct {
	putInput     *dynamodb.PutItemInput
	putErr       error
	getOutput    *dynamodb.GetItemOutput
	getErr       error
	updateInputs []*dynamodb.UpdateItemInput
	updateOutput *dynamodb.UpdateItemOutput
	updateErr    error
	queryInput   *dynamodb.QueryInput
	queryOutput  *dynamodb.QueryOutput
	queryErr     error
}

func (m *mockDynamo) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	return &dynamodb.PutItemOutput{}, m.putErr
}

func (m *mockDynamo) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, input)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updateOutput == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return m.updateOutput, nil
}

func (m *mockDynamo) Query(ctx context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.queryInput = input
	if m.queryOutput == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return m.queryOutput, nil
}
