package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbridge/telehealth-platform/internal/appointments"
	"github.com/healthbridge/telehealth-platform/internal/timeutil"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

func fixtureAppointment() *appointments.Appointment {
	date := timeutil.FromTime(time.Date(2025, time.March, 14, 12, 0, 0, 0, time.Local))
	return &appointments.Appointment{
		ID:              "apt-1",
		PatientID:       "patient-1",
		PatientName:     "Asha Rao",
		DoctorID:        "doctor-1",
		DoctorName:      "Dr. Mehta",
		AppointmentDate: date,
		AppointmentTime: "9:00 AM",
	}
}

func TestFanout_AppointmentCreatedNotifiesDoctor(t *testing.T) {
	inbox := &fakeInbox{}
	fanout := NewFanout(inbox, nil, nil, nil, logging.Default())

	require.NoError(t, fanout.AppointmentCreated(context.Background(), fixtureAppointment()))
	require.Len(t, inbox.created, 1)

	n := inbox.created[0]
	assert.Equal(t, "doctor-1", n.UserID)
	assert.Equal(t, "🔔 New Appointment Request", n.Title)
	assert.Equal(t, "Asha Rao has requested an appointment for 3/14/2025 at 9:00 AM.", n.Message)
	assert.Equal(t, TypeInfo, n.Type)
	assert.Equal(t, CategoryAppointmentRequest, n.Category)
	assert.Equal(t, "apt-1", n.AppointmentID)
}

func TestFanout_ConfirmedNotifiesPatient(t *testing.T) {
	inbox := &fakeInbox{}
	fanout := NewFanout(inbox, nil, nil, nil, logging.Default())

	err := fanout.AppointmentStatusChanged(context.Background(), fixtureAppointment(), appointments.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, inbox.created, 1)

	n := inbox.created[0]
	assert.Equal(t, "patient-1", n.UserID)
	assert.Equal(t, "✅ Appointment Confirmed!", n.Title)
	assert.Equal(t, "Your appointment with Dr. Mehta has been confirmed for 3/14/2025 at 9:00 AM.", n.Message)
	assert.Equal(t, TypeSuccess, n.Type)
	assert.Equal(t, CategoryAppointment, n.Category)
}

func TestFanout_RejectedNotifiesPatient(t *testing.T) {
	inbox := &fakeInbox{}
	fanout := NewFanout(inbox, nil, nil, nil, logging.Default())

	err := fanout.AppointmentStatusChanged(context.Background(), fixtureAppointment(), appointments.StatusRejected)
	require.NoError(t, err)
	require.Len(t, inbox.created, 1)

	n := inbox.created[0]
	assert.Equal(t, "❌ Appointment Request Declined", n.Title)
	assert.Equal(t, "Your appointment request with Dr. Mehta has been declined. Please try booking another slot or contact the doctor directly.", n.Message)
	assert.Equal(t, TypeError, n.Type)
}

func TestFanout_OtherStatusesEmitNothing(t *testing.T) {
	inbox := &fakeInbox{}
	fanout := NewFanout(inbox, nil, nil, nil, logging.Default())

	for _, status := range []appointments.Status{appointments.StatusCompleted, appointments.StatusCancelled, appointments.StatusPending} {
		require.NoError(t, fanout.AppointmentStatusChanged(context.Background(), fixtureAppointment(), status))
	}
	assert.Empty(t, inbox.created)
}

func TestFanout_DirectoryFillsMissingNames(t *testing.T) {
	inbox := &fakeInbox{}
	names := fakeResolver{"patient-1": "Asha Rao"}
	fanout := NewFanout(inbox, names, nil, nil, logging.Default())

	appt := fixtureAppointment()
	appt.PatientName = ""
	require.NoError(t, fanout.AppointmentCreated(context.Background(), appt))
	assert.Contains(t, inbox.created[0].Message, "Asha Rao has requested")

	// Unknown user falls back to a generic phrase instead of failing.
	appt.PatientID = "ghost"
	require.NoError(t, fanout.AppointmentCreated(context.Background(), appt))
	assert.Contains(t, inbox.created[1].Message, "A patient has requested")
}

func TestFanout_UnparseableDateStillDelivers(t *testing.T) {
	inbox := &fakeInbox{}
	fanout := NewFanout(inbox, nil, nil, nil, logging.Default())

	appt := fixtureAppointment()
	appt.AppointmentDate = "not a date"
	require.NoError(t, fanout.AppointmentCreated(context.Background(), appt))
	assert.Contains(t, inbox.created[0].Message, "for the requested date at 9:00 AM")
}

func TestFanout_StoreFailureGoesToDeadLetter(t *testing.T) {
	storeErr := errors.New("dynamo down")
	inbox := &fakeInbox{err: storeErr}
	sink := &fakeSink{}
	fanout := NewFanout(inbox, nil, sink, nil, logging.Default())

	err := fanout.AppointmentCreated(context.Background(), fixtureAppointment())
	assert.ErrorIs(t, err, storeErr, "the engine decides whether to swallow")
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "doctor-1", sink.entries[0].n.UserID)
	assert.Equal(t, storeErr, sink.entries[0].cause)
}

func TestSQSSink_PublishesEnvelope(t *testing.T) {
	mock := &mockSQS{}
	sink := NewSQSSink(mock, "https://sqs.local/dead-letters")

	n := &Notification{UserID: "doctor-1", Title: "🔔 New Appointment Request"}
	require.NoError(t, sink.DeadLetter(context.Background(), n, errors.New("dynamo down")))

	require.NotNil(t, mock.input)
	assert.Equal(t, "https://sqs.local/dead-letters", *mock.input.QueueUrl)

	var envelope deadLetterEnvelope
	require.NoError(t, json.Unmarshal([]byte(*mock.input.MessageBody), &envelope))
	assert.Equal(t, "doctor-1", envelope.Notification.UserID)
	assert.Equal(t, "dynamo down", envelope.Cause)
}

type fakeInbox struct {
	created []*Notification
	err     error
}

func (f *fakeInbox) Create(ctx context.Context, n *Notification) (*Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, n)
	return n, nil
}

type fakeResolver map[string]string

func (f fakeResolver) DisplayName(_ context.Context, userID string) (string, error) {
	name, ok := f[userID]
	if !ok {
		return "", errors.New("no such user")
	}
	return name, nil
}

type deadLetterEntry struct {
	n     *Notification
	cause error
}

type fakeSink struct {
	entries []deadLetterEntry
}

func (f *fakeSink) DeadLetter(_ context.Context, n *Notification, cause error) error {
	f.entries = append(f.entries, deadLetterEntry{n: n, cause: cause})
	return nil
}

type mockSQS struct {
	input *sqs.SendMessageInput
}

func (m *mockSQS) SendMessage(_ context.Context, input *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.input = input
	return &sqs.SendMessageOutput{}, nil
}
