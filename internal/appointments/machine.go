package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/healthbridge/telehealth-platform/internal/observability/metrics"
	"github.com/healthbridge/telehealth-platform/internal/timeutil"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Action is a request to move an appointment along the transition graph.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// transition table: every action has exactly one legal source state. The four
// non-pending states are terminal except that confirmed may still complete or
// cancel.
var transitions = map[Action]struct{ from, to Status }{
	ActionApprove:  {StatusPending, StatusConfirmed},
	ActionReject:   {StatusPending, StatusRejected},
	ActionComplete: {StatusConfirmed, StatusCompleted},
	ActionCancel:   {StatusConfirmed, StatusCancelled},
}

// ParseAction validates a wire-level action name.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	_, ok := transitions[a]
	return a, ok
}

// Repository is the store surface the engine depends on.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListByParty(ctx context.Context, partyID string, role Role) ([]*Appointment, error)
	ApplyTransition(ctx context.Context, id string, patch map[string]any, expected Status) (*Appointment, error)
}

var _ Repository = (*Store)(nil)

// Notifier receives post-commit fan-out callbacks. Emission failures must
// never be folded back into the transition's own error channel.
type Notifier interface {
	AppointmentCreated(ctx context.Context, appt *Appointment) error
	AppointmentStatusChanged(ctx context.Context, appt *Appointment, newStatus Status) error
}

// Engine validates and applies appointment state transitions and triggers
// notification fan-out after each committed write.
type Engine struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.EngineMetrics
	logger   *logging.Logger
}

// NewEngine creates the coordination engine. notifier and engineMetrics may
// be nil.
func NewEngine(repo Repository, notifier Notifier, engineMetrics *metrics.EngineMetrics, logger *logging.Logger) *Engine {
	if repo == nil {
		panic("appointments: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		repo:     repo,
		notifier: notifier,
		metrics:  engineMetrics,
		logger:   logger,
	}
}

// Create books a new appointment in the pending state and notifies the
// doctor. The notice is fire-and-forget: a fan-out fault is logged and
// swallowed because the appointment write has already committed.
func (e *Engine) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	if appt == nil {
		return nil, errors.New("appointments: appointment cannot be nil")
	}
	if appt.PatientID == "" || appt.DoctorID == "" {
		return nil, errors.New("appointments: patientId and doctorId are required")
	}
	if appt.Type == "" {
		appt.Type = TypePhysical
	}
	if appt.Type != TypeVideo && appt.Type != TypePhysical {
		return nil, fmt.Errorf("appointments: unknown appointment type %q", appt.Type)
	}

	created, err := e.repo.Create(ctx, appt)
	if err != nil {
		e.metrics.ObserveTransition("create", outcomeLabel(err))
		return nil, err
	}
	e.metrics.ObserveTransition("create", "ok")
	e.logger.Info("appointment created",
		"appointment_id", created.ID,
		"patient_id", created.PatientID,
		"doctor_id", created.DoctorID,
	)

	if e.notifier != nil {
		if err := e.notifier.AppointmentCreated(ctx, created); err != nil {
			e.logger.Warn("appointment saved but request notice failed",
				"appointment_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// TransitionOptions carries optional free-text attached to a transition.
type TransitionOptions struct {
	Reason string
}

// Transition applies one action to an appointment. The stored status is read
// fresh, validated against the action's source state, and the write is
// conditioned on that same status so a concurrent writer loses with
// ErrConcurrentModification instead of double-applying.
func (e *Engine) Transition(ctx context.Context, id string, action Action, actorID string, opts TransitionOptions) (*Appointment, error) {
	rule, ok := transitions[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if actorID == "" {
		return nil, errors.New("appointments: actor id required")
	}

	current, err := e.repo.GetByID(ctx, id)
	if err != nil {
		e.metrics.ObserveTransition(string(action), outcomeLabel(err))
		return nil, err
	}
	if current.Status != rule.from {
		e.metrics.ObserveTransition(string(action), "invalid")
		return nil, fmt.Errorf("%w: cannot %s appointment in status %q", ErrInvalidTransition, action, current.Status)
	}

	now := timeutil.Now()
	patch := map[string]any{"status": rule.to}
	switch action {
	case ActionApprove:
		patch["confirmedAt"] = now
		patch["confirmedBy"] = actorID
	case ActionReject:
		patch["rejectedAt"] = now
		patch["rejectedBy"] = actorID
		patch["rejectionReason"] = opts.Reason
	case ActionComplete:
		patch["completedAt"] = now
		patch["completedBy"] = actorID
	case ActionCancel:
		patch["cancelledAt"] = now
		patch["cancelledBy"] = actorID
		if opts.Reason != "" {
			patch["cancellationReason"] = opts.Reason
		}
	}

	updated, err := e.repo.ApplyTransition(ctx, id, patch, rule.from)
	if err != nil {
		e.metrics.ObserveTransition(string(action), outcomeLabel(err))
		return nil, err
	}
	e.metrics.ObserveTransition(string(action), "ok")
	e.logger.Info("appointment transition applied",
		"appointment_id", id,
		"action", string(action),
		"from", string(rule.from),
		"to", string(rule.to),
		"actor_id", actorID,
	)

	// Only confirmed/rejected notify the patient; completed/cancelled are a
	// deliberate extension point with no notice.
	if e.notifier != nil && (rule.to == StatusConfirmed || rule.to == StatusRejected) {
		if err := e.notifier.AppointmentStatusChanged(ctx, updated, rule.to); err != nil {
			e.logger.Warn("transition committed but status notice failed",
				"appointment_id", id, "new_status", string(rule.to), "error", err)
		}
	}
	return updated, nil
}

// Get fetches one appointment.
func (e *Engine) Get(ctx context.Context, id string) (*Appointment, error) {
	return e.repo.GetByID(ctx, id)
}

// ListByParty returns a party's appointments, optionally filtered by status.
func (e *Engine) ListByParty(ctx context.Context, partyID string, role Role, status Status) ([]*Appointment, error) {
	appts, err := e.repo.ListByParty(ctx, partyID, role)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return appts, nil
	}
	filtered := appts[:0]
	for _, a := range appts {
		if a.Status == status {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ListPending returns a doctor's open requests, newest first.
func (e *Engine) ListPending(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return e.ListByParty(ctx, doctorID, RoleDoctor, StatusPending)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, ErrStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
