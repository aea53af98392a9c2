package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// DeadLetterSink receives notifications that could not be persisted so they
// can be replayed instead of lost.
type DeadLetterSink interface {
	DeadLetter(ctx context.Context, n *Notification, cause error) error
}

// deadLetterEnvelope is the wire shape pushed onto the replay queue.
type deadLetterEnvelope struct {
	Notification *Notification `json:"notification"`
	Cause        string        `json:"cause"`
}

type sqsAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSink pushes failed notifications onto an SQS replay queue.
type SQSSink struct {
	client   sqsAPI
	queueURL string
}

// NewSQSSink creates a sink around the provided SQS client.
func NewSQSSink(client sqsAPI, queueURL string) *SQSSink {
	if client == nil {
		panic("notifications: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notifications: SQS queueURL cannot be empty")
	}
	return &SQSSink{
		client:   client,
		queueURL: queueURL,
	}
}

func (s *SQSSink) DeadLetter(ctx context.Context, n *Notification, cause error) error {
	body, err := json.Marshal(deadLetterEnvelope{Notification: n, Cause: cause.Error()})
	if err != nil {
		return fmt.Errorf("notifications: failed to marshal dead letter: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("notifications: failed to send dead letter: %w", err)
	}
	return nil
}

// LogSink records failed notifications in the log only. It stands in for the
// replay queue in environments without SQS.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink that writes to the given logger.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) DeadLetter(_ context.Context, n *Notification, cause error) error {
	s.logger.Error("notification dead-lettered",
		"user_id", n.UserID,
		"category", string(n.Category),
		"appointment_id", n.AppointmentID,
		"cause", cause,
	)
	return nil
}
