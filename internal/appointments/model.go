package appointments

import "github.com/healthbridge/telehealth-platform/internal/timeutil"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Type distinguishes video consultations from in-person visits.
type Type string

const (
	TypeVideo    Type = "video"
	TypePhysical Type = "physical"
)

// Role identifies which side of an appointment a party is on.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Appointment is one document in the appointments table. Party names and the
// specialization are denormalized at creation time and not re-synced when the
// source profile changes.
type Appointment struct {
	ID             string `dynamodbav:"id" json:"id"`
	PatientID      string `dynamodbav:"patientId" json:"patientId"`
	PatientName    string `dynamodbav:"patientName,omitempty" json:"patientName,omitempty"`
	DoctorID       string `dynamodbav:"doctorId" json:"doctorId"`
	DoctorName     string `dynamodbav:"doctorName,omitempty" json:"doctorName,omitempty"`
	Specialization string `dynamodbav:"specialization,omitempty" json:"specialization,omitempty"`

	// AppointmentDate carries whatever shape the writing client used: an
	// epoch-struct timestamp, an ISO string, or nothing. Consumers go through
	// timeutil.NormalizeDate instead of branching on the representation.
	AppointmentDate any    `dynamodbav:"appointmentDate,omitempty" json:"appointmentDate,omitempty"`
	AppointmentTime string `dynamodbav:"appointmentTime,omitempty" json:"appointmentTime,omitempty"`

	Type           Type   `dynamodbav:"type" json:"type"`
	Reason         string `dynamodbav:"reason,omitempty" json:"reason,omitempty"`
	ReasonForVisit string `dynamodbav:"reasonForVisit,omitempty" json:"reasonForVisit,omitempty"`
	Diagnosis      string `dynamodbav:"diagnosis,omitempty" json:"diagnosis,omitempty"`

	Status    Status             `dynamodbav:"status" json:"status"`
	CreatedAt timeutil.Timestamp `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt timeutil.Timestamp `dynamodbav:"updatedAt" json:"updatedAt"`

	ConfirmedAt *timeutil.Timestamp `dynamodbav:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	ConfirmedBy string              `dynamodbav:"confirmedBy,omitempty" json:"confirmedBy,omitempty"`

	RejectedAt      *timeutil.Timestamp `dynamodbav:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	RejectedBy      string              `dynamodbav:"rejectedBy,omitempty" json:"rejectedBy,omitempty"`
	RejectionReason string              `dynamodbav:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`

	CompletedAt *timeutil.Timestamp `dynamodbav:"completedAt,omitempty" json:"completedAt,omitempty"`
	CompletedBy string              `dynamodbav:"completedBy,omitempty" json:"completedBy,omitempty"`

	CancelledAt        *timeutil.Timestamp `dynamodbav:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy        string              `dynamodbav:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancellationReason string              `dynamodbav:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
}
