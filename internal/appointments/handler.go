package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// CreateRequest is the booking payload sent by the patient UI.
type CreateRequest struct {
	PatientID       string `json:"patientId"`
	PatientName     string `json:"patientName"`
	DoctorID        string `json:"doctorId"`
	DoctorName      string `json:"doctorName"`
	Specialization  string `json:"specialization"`
	AppointmentDate any    `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Type            Type   `json:"type"`
	Reason          string `json:"reason"`
	ReasonForVisit  string `json:"reasonForVisit"`
}

// Create handles POST /appointments requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode create request", "error", err)
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt := &Appointment{
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		DoctorID:        req.DoctorID,
		DoctorName:      req.DoctorName,
		Specialization:  req.Specialization,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Type:            req.Type,
		Reason:          req.Reason,
		ReasonForVisit:  req.ReasonForVisit,
	}

	created, err := h.engine.Create(r.Context(), appt)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Get handles GET /appointments/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.engine.Get(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// ListResponse is the response for listing a party's appointments
type ListResponse struct {
	Appointments []*Appointment `json:"appointments"`
	Count        int            `json:"count"`
}

// List handles GET /appointments?partyId=&role=&status= requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partyID := q.Get("partyId")
	if partyID == "" {
		jsonError(w, "missing partyId", http.StatusBadRequest)
		return
	}
	role := RolePatient
	if q.Get("role") == string(RoleDoctor) {
		role = RoleDoctor
	}

	appts, err := h.engine.ListByParty(r.Context(), partyID, role, Status(q.Get("status")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Appointments: appts, Count: len(appts)})
}

// TransitionRequest carries the actor and optional free-text reason.
type TransitionRequest struct {
	ActorID string `json:"actorId"`
	Reason  string `json:"reason,omitempty"`
}

// Transition handles POST /appointments/{id}/{action} requests for
// approve, reject, complete and cancel.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action, ok := ParseAction(chi.URLParam(r, "action"))
	if !ok {
		jsonError(w, "unknown action", http.StatusBadRequest)
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ActorID == "" {
		jsonError(w, "missing actorId", http.StatusBadRequest)
		return
	}

	appt, err := h.engine.Transition(r.Context(), id, action, req.ActorID, TransitionOptions{Reason: req.Reason})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// writeEngineError maps the error taxonomy onto distinct HTTP responses so
// the UI can tell a lost race from a genuine fault.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		jsonError(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConcurrentModification):
		jsonError(w, "already handled by another action", http.StatusConflict)
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("appointment store unavailable", "error", err)
		jsonError(w, "temporarily unavailable", http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusBadRequest)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
