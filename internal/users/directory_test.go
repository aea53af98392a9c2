package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func userItem(id, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":          &types.AttributeValueMemberS{Value: id},
		"displayName": &types.AttributeValueMemberS{Value: name},
		"role":        &types.AttributeValueMemberS{Value: "doctor"},
	}
}

func TestDirectory_GetCachesDisplayName(t *testing.T) {
	mock := &mockDynamo{output: &dynamodb.GetItemOutput{Item: userItem("doctor-1", "Dr. Mehta")}}
	dir := NewDirectory(mock, "users", newTestCache(t), time.Minute, logging.Default())

	user, err := dir.Get(context.Background(), "doctor-1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mehta", user.DisplayName)
	assert.Equal(t, 1, mock.calls)

	// Second lookup is served from the cache.
	name, err := dir.DisplayName(context.Background(), "doctor-1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mehta", name)
	assert.Equal(t, 1, mock.calls, "expected cache hit, not a second table read")
}

func TestDirectory_GetWithoutCache(t *testing.T) {
	mock := &mockDynamo{output: &dynamodb.GetItemOutput{Item: userItem("patient-1", "Asha Rao")}}
	dir := NewDirectory(mock, "users", nil, 0, logging.Default())

	name, err := dir.DisplayName(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", name)
}

func TestDirectory_GetUnknownUser(t *testing.T) {
	dir := NewDirectory(&mockDynamo{output: &dynamodb.GetItemOutput{}}, "users", nil, 0, logging.Default())
	_, err := dir.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectory_CacheOutageFallsThrough(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	srv.Close() // cache down, table still up

	mock := &mockDynamo{output: &dynamodb.GetItemOutput{Item: userItem("doctor-1", "Dr. Mehta")}}
	dir := NewDirectory(mock, "users", cache, time.Minute, logging.Default())

	name, err := dir.DisplayName(context.Background(), "doctor-1")
	require.NoError(t, err, "cache outage must not fail the lookup")
	assert.Equal(t, "Dr. Mehta", name)
}

func TestDirectory_StoreFault(t *testing.T) {
	dir := NewDirectory(&mockDynamo{err: errors.New("dynamo down")}, "users", nil, 0, logging.Default())
	_, err := dir.Get(context.Background(), "doctor-1")
	assert.Error(t, err)
}

type mockDynamo struct {
	output *dynamodb.GetItemOutput
	err    error
	calls  int
}

func (m *mockDynamo) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.output == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.output, nil
}
