package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/healthbridge/telehealth-platform/internal/appointments"
	"github.com/healthbridge/telehealth-platform/internal/http/handlers"
	httpmiddleware "github.com/healthbridge/telehealth-platform/internal/http/middleware"
	"github.com/healthbridge/telehealth-platform/internal/notifications"
	"github.com/healthbridge/telehealth-platform/internal/schedule"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	AppointmentsHandler  *appointments.Handler
	NotificationsHandler *notifications.Handler
	ScheduleHandler      *schedule.Handler
	Dashboard            *handlers.Dashboard
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string

	// BookingRateLimit caps booking requests per second per client IP.
	// Zero disables the limiter.
	BookingRateLimit float64
	BookingBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		r.Route("/appointments", func(r chi.Router) {
			create := http.HandlerFunc(cfg.AppointmentsHandler.Create)
			if cfg.BookingRateLimit > 0 {
				limiter := httpmiddleware.NewRateLimiter(cfg.BookingRateLimit, cfg.BookingBurst)
				r.With(limiter.Middleware).Post("/", create)
			} else {
				r.Post("/", create)
			}
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Get("/{id}", cfg.AppointmentsHandler.Get)
			r.Post("/{id}/{action}", cfg.AppointmentsHandler.Transition)
		})
	}

	if cfg.Dashboard != nil {
		r.Get("/dashboard/{userID}", cfg.Dashboard.Serve)
	}

	if cfg.ScheduleHandler != nil {
		r.Get("/doctors/{doctorID}/availability", cfg.ScheduleHandler.Slots)
	}

	if cfg.NotificationsHandler != nil {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationsHandler.List)
			r.Post("/read-all", cfg.NotificationsHandler.MarkAllRead)
			r.Post("/{id}/read", cfg.NotificationsHandler.MarkRead)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
