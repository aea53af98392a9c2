package notifications

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Handler handles HTTP requests for the notification inbox
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new notifications handler
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// ListResponse is the response for a recipient's inbox
type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	Count         int             `json:"count"`
}

// List handles GET /notifications?userId=&unread= requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		h.jsonError(w, "missing userId", http.StatusBadRequest)
		return
	}

	items, err := h.store.ListByUser(r.Context(), userID, q.Get("unread") == "true")
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Notifications: items, Count: len(items)})
}

// MarkReadRequest identifies the recipient acting on their inbox.
type MarkReadRequest struct {
	UserID string `json:"userId"`
}

// MarkRead handles POST /notifications/{id}/read requests
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		h.jsonError(w, "missing userId", http.StatusBadRequest)
		return
	}

	if err := h.store.MarkRead(r.Context(), id, req.UserID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all requests
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		h.jsonError(w, "missing userId", http.StatusBadRequest)
		return
	}

	updated, err := h.store.MarkAllRead(r.Context(), req.UserID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "updatedCount": updated})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.jsonError(w, "notification not found", http.StatusNotFound)
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("notification store unavailable", "error", err)
		h.jsonError(w, "temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
