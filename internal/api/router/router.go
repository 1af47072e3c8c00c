package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carevault/booking-platform/internal/appointments"
	"github.com/carevault/booking-platform/internal/escrow"
	httpmiddleware "github.com/carevault/booking-platform/internal/http/middleware"
	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	EscrowHandler       *escrow.Handler
	QuoteHandler        *pricing.QuoteHandler
	MetricsHandler      http.Handler
	AdminJWTSecret      string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.QuoteHandler != nil {
			api.Post("/quotes", cfg.QuoteHandler.Quote)
		}
		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", func(apts chi.Router) {
				apts.Post("/", cfg.AppointmentsHandler.Book)
				apts.Route("/{id}", func(one chi.Router) {
					one.Get("/", cfg.AppointmentsHandler.Get)
					one.Post("/accept", cfg.AppointmentsHandler.Accept)
					one.Post("/reject", cfg.AppointmentsHandler.Reject)
					one.Post("/cancel", cfg.AppointmentsHandler.Cancel)
					one.Post("/verify-otp", cfg.AppointmentsHandler.VerifyOTP)
					one.Post("/complete", cfg.AppointmentsHandler.Complete)
					if cfg.EscrowHandler != nil {
						one.Route("/escrow", func(esc chi.Router) {
							esc.Mount("/", cfg.EscrowHandler.Routes())
							esc.Group(func(admin chi.Router) {
								admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
								admin.Mount("/admin", cfg.EscrowHandler.AdminRoutes())
							})
						})
					}
				})
			})
		}
	})

	return r
}
