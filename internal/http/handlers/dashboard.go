package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthbridge/telehealth-platform/internal/appointments"
	"github.com/healthbridge/telehealth-platform/internal/schedule"
	"github.com/healthbridge/telehealth-platform/internal/triage"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// AppointmentReader is the slice of the appointment engine the dashboard
// reads.
type AppointmentReader interface {
	ListByParty(ctx context.Context, partyID string, role appointments.Role, status appointments.Status) ([]*appointments.Appointment, error)
}

// Dashboard serves the combined home view: counters, the weekly timeline and,
// for doctors, the pending queue ordered by triage urgency.
type Dashboard struct {
	appts  AppointmentReader
	logger *logging.Logger
}

// NewDashboard creates the dashboard handler.
func NewDashboard(appts AppointmentReader, logger *logging.Logger) *Dashboard {
	if appts == nil {
		panic("handlers: appointment reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dashboard{
		appts:  appts,
		logger: logger,
	}
}

// QueueEntry is one pending request with its advisory urgency score. The
// score orders the queue; it never gates any transition.
type QueueEntry struct {
	*appointments.Appointment
	Urgency int `json:"urgency"`
}

// DashboardResponse is the response for GET /dashboard/{userID}
type DashboardResponse struct {
	Summary      schedule.Summary     `json:"summary"`
	Timeline     []schedule.DayBucket `json:"timeline"`
	PendingQueue []QueueEntry         `json:"pendingQueue,omitempty"`
}

// Serve handles GET /dashboard/{userID}?role= requests
func (d *Dashboard) Serve(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	role := appointments.RolePatient
	if r.URL.Query().Get("role") == string(appointments.RoleDoctor) {
		role = appointments.RoleDoctor
	}

	appts, err := d.appts.ListByParty(r.Context(), userID, role, "")
	if err != nil {
		d.writeError(w, err)
		return
	}

	now := time.Now()
	resp := DashboardResponse{
		Summary:  schedule.Summarize(appts, now),
		Timeline: schedule.WeeklyTimeline(appts, now),
	}
	if role == appointments.RoleDoctor {
		resp.PendingQueue = buildQueue(appts)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// buildQueue scores each pending request and orders the queue most urgent
// first, newest first within a tier.
func buildQueue(appts []*appointments.Appointment) []QueueEntry {
	var queue []QueueEntry
	for _, a := range appts {
		if a.Status != appointments.StatusPending {
			continue
		}
		queue = append(queue, QueueEntry{
			Appointment: a,
			Urgency:     triage.Score(a.Reason, a.ReasonForVisit, a.Diagnosis),
		})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Urgency != queue[j].Urgency {
			return queue[i].Urgency > queue[j].Urgency
		}
		return queue[i].CreatedAt.Time().After(queue[j].CreatedAt.Time())
	})
	return queue
}

func (d *Dashboard) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if errors.Is(err, appointments.ErrStoreUnavailable) {
		d.logger.Error("dashboard read failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "temporarily unavailable"})
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
