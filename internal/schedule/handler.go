package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Handler handles HTTP requests for doctor availability
type Handler struct {
	availability *Availability
	logger       *logging.Logger
}

// NewHandler creates a new schedule handler
func NewHandler(availability *Availability, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		availability: availability,
		logger:       logger,
	}
}

// SlotsResponse is the response for an availability lookup
type SlotsResponse struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Slots    []Slot `json:"slots"`
}

// Slots handles GET /doctors/{doctorID}/availability?date=YYYY-MM-DD requests
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	rawDate := r.URL.Query().Get("date")

	date, err := time.ParseInLocation("2006-01-02", rawDate, time.Local)
	if err != nil {
		h.jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.availability.SlotsFor(r.Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			h.logger.Error("schedule store unavailable", "error", err)
			h.jsonError(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if slots == nil {
		slots = []Slot{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SlotsResponse{DoctorID: doctorID, Date: rawDate, Slots: slots})
}

func (h *Handler) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
