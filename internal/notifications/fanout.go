package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/healthbridge/telehealth-platform/internal/appointments"
	"github.com/healthbridge/telehealth-platform/internal/observability/metrics"
	"github.com/healthbridge/telehealth-platform/internal/timeutil"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Inbox is the persistence surface the fan-out writes to.
type Inbox interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
}

var _ Inbox = (*Store)(nil)

// NameResolver looks up a user's display name when the appointment document
// does not carry one.
type NameResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Fanout turns appointment lifecycle events into inbox notifications. It
// implements the engine's Notifier hook; a failed write is handed to the
// dead-letter sink before the error is surfaced.
type Fanout struct {
	inbox   Inbox
	names   NameResolver
	dead    DeadLetterSink
	metrics *metrics.EngineMetrics
	logger  *logging.Logger
}

// NewFanout builds the fan-out. names, dead and engineMetrics may be nil.
func NewFanout(inbox Inbox, names NameResolver, dead DeadLetterSink, engineMetrics *metrics.EngineMetrics, logger *logging.Logger) *Fanout {
	if inbox == nil {
		panic("notifications: inbox cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Fanout{
		inbox:   inbox,
		names:   names,
		dead:    dead,
		metrics: engineMetrics,
		logger:  logger,
	}
}

var _ appointments.Notifier = (*Fanout)(nil)

// AppointmentCreated tells the doctor a new request is waiting.
func (f *Fanout) AppointmentCreated(ctx context.Context, appt *appointments.Appointment) error {
	patient := f.resolveName(ctx, appt.PatientID, appt.PatientName, "A patient")
	return f.deliver(ctx, &Notification{
		UserID:        appt.DoctorID,
		Title:         "🔔 New Appointment Request",
		Message:       fmt.Sprintf("%s has requested an appointment for %s at %s.", patient, formatDate(appt.AppointmentDate), appt.AppointmentTime),
		Type:          TypeInfo,
		Category:      CategoryAppointmentRequest,
		AppointmentID: appt.ID,
	})
}

// AppointmentStatusChanged tells the patient their request was confirmed or
// declined. Other statuses emit nothing.
func (f *Fanout) AppointmentStatusChanged(ctx context.Context, appt *appointments.Appointment, newStatus appointments.Status) error {
	doctor := f.resolveName(ctx, appt.DoctorID, appt.DoctorName, "the doctor")

	var n *Notification
	switch newStatus {
	case appointments.StatusConfirmed:
		n = &Notification{
			UserID:        appt.PatientID,
			Title:         "✅ Appointment Confirmed!",
			Message:       fmt.Sprintf("Your appointment with %s has been confirmed for %s at %s.", doctor, formatDate(appt.AppointmentDate), appt.AppointmentTime),
			Type:          TypeSuccess,
			Category:      CategoryAppointment,
			AppointmentID: appt.ID,
		}
	case appointments.StatusRejected:
		n = &Notification{
			UserID:        appt.PatientID,
			Title:         "❌ Appointment Request Declined",
			Message:       fmt.Sprintf("Your appointment request with %s has been declined. Please try booking another slot or contact the doctor directly.", doctor),
			Type:          TypeError,
			Category:      CategoryAppointment,
			AppointmentID: appt.ID,
		}
	default:
		return nil
	}
	return f.deliver(ctx, n)
}

func (f *Fanout) deliver(ctx context.Context, n *Notification) error {
	start := time.Now()
	_, err := f.inbox.Create(ctx, n)
	f.metrics.ObserveFanoutLatency(string(n.Category), time.Since(start).Seconds())
	if err == nil {
		f.metrics.ObserveFanout(string(n.Category), "ok")
		return nil
	}

	f.metrics.ObserveFanout(string(n.Category), "dead_lettered")
	if f.dead != nil {
		if dlErr := f.dead.DeadLetter(ctx, n, err); dlErr != nil {
			f.logger.Error("notification lost: store and dead-letter sink both failed",
				"user_id", n.UserID, "store_error", err, "sink_error", dlErr)
		}
	}
	return err
}

// resolveName prefers the name embedded in the appointment document, then the
// directory, then a generic fallback.
func (f *Fanout) resolveName(ctx context.Context, userID, embedded, fallback string) string {
	if embedded != "" {
		return embedded
	}
	if f.names != nil && userID != "" {
		if name, err := f.names.DisplayName(ctx, userID); err == nil && name != "" {
			return name
		}
	}
	return fallback
}

// formatDate renders any of the stored date shapes the way the inbox always
// showed them. Unparseable dates fall back to a neutral phrase rather than
// dropping the notice.
func formatDate(v any) string {
	if t, ok := timeutil.NormalizeDate(v); ok {
		return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
	}
	return "the requested date"
}
