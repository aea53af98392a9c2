package notifications

import "github.com/healthbridge/telehealth-platform/internal/timeutil"

// Type is the severity shown by the inbox UI.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// Category groups notices by what produced them.
type Category string

const (
	CategoryAppointmentRequest Category = "appointment_request"
	CategoryAppointment        Category = "appointment"
)

// Notification is one inbox entry for a single recipient.
type Notification struct {
	ID            string              `json:"id" dynamodbav:"id"`
	UserID        string              `json:"userId" dynamodbav:"userId"`
	Title         string              `json:"title" dynamodbav:"title"`
	Message       string              `json:"message" dynamodbav:"message"`
	Type          Type                `json:"type" dynamodbav:"type"`
	Category      Category            `json:"category" dynamodbav:"category"`
	AppointmentID string              `json:"appointmentId,omitempty" dynamodbav:"appointmentId,omitempty"`
	Read          bool                `json:"read" dynamodbav:"read"`
	CreatedAt     timeutil.Timestamp  `json:"createdAt" dynamodbav:"createdAt"`
	ReadAt        *timeutil.Timestamp `json:"readAt,omitempty" dynamodbav:"readAt,omitempty"`
}
