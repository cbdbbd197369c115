// Package api serves the booking flow over a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"salonbook/internal/auth"
	"salonbook/internal/booking"
	"salonbook/internal/catalog"
	"salonbook/internal/salonapi"
	"salonbook/internal/schedule"
	"salonbook/internal/slots"
)

// ServicesRoute is where clients are sent when the cart is empty.
const ServicesRoute = "/services"

// Backend is the part of the salon backend the API calls directly.
type Backend interface {
	LoginStylist(ctx context.Context, email, password string) (salonapi.Login, error)
	GetAvailability(ctx context.Context, stylistID int64) ([]schedule.Record, error)
	ListAppointments(ctx context.Context, stylistID int64) ([]salonapi.Appointment, error)
	CreateAvailability(ctx context.Context, rec schedule.Record) (schedule.Record, error)
	UpdateAvailability(ctx context.Context, rec schedule.Record) (schedule.Record, error)
	DeleteAvailability(ctx context.Context, stylistID, recordID int64) error
}

// Config holds the server dependencies.
type Config struct {
	Booking           *booking.Service
	Catalog           catalog.Source
	Backend           Backend
	Issuer            *auth.Issuer
	Validate          *validator.Validate
	Logger            *zerolog.Logger
	RequestsPerSecond float64
	Burst             int
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Leave it off unless a reverse proxy overwrites those headers.
	TrustProxy bool
}

// Server is the HTTP API.
type Server struct {
	booking  *booking.Service
	sessions *booking.SessionStore
	catalog  catalog.Source
	backend  Backend
	issuer   *auth.Issuer
	validate *validator.Validate
	logger   zerolog.Logger
	limiter  *rateLimiter
	proxied  bool
	router   chi.Router
}

// NewServer builds the router.
func NewServer(cfg Config) *Server {
	l := zerolog.Nop()
	if cfg.Logger != nil {
		l = cfg.Logger.With().Str("component", "api").Logger()
	}
	if cfg.Validate == nil {
		cfg.Validate = validator.New()
	}
	cfg.Validate.RegisterTagNameFunc(jsonFieldName)
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}

	s := &Server{
		booking:  cfg.Booking,
		sessions: cfg.Booking.Sessions(),
		catalog:  cfg.Catalog,
		backend:  cfg.Backend,
		issuer:   cfg.Issuer,
		validate: cfg.Validate,
		logger:   l,
		limiter:  newRateLimiter(cfg.RequestsPerSecond, cfg.Burst, 3*time.Minute),
		proxied:  cfg.TrustProxy,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartCleanup evicts idle rate limiter entries every interval until ctx is done.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.limiter.sweep()
			}
		}
	}()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.proxied {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Post("/login", s.handleLogin)
		r.Get("/services", s.handleListServices)
		r.Get("/services/{id}", s.handleGetService)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleGetSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.handleGetCart)
				r.Delete("/", s.handleClearCart)
				r.Post("/items", s.handleAddToCart)
				r.Delete("/items/{id}", s.handleRemoveFromCart)
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/", s.handleGetCalendar)
				r.Post("/open", s.handleOpenCalendar)
				r.Post("/prev", s.handleCalendarPrev)
				r.Post("/next", s.handleCalendarNext)
				r.Post("/select", s.handleSelectDay)
				r.Post("/reload", s.handleReloadCalendar)
			})

			r.Route("/slots", func(r chi.Router) {
				r.Get("/", s.handleGetSlots)
				r.Post("/select", s.handleSelectSlot)
			})

			r.Route("/booking", func(r chi.Router) {
				r.Post("/confirm", s.handleConfirm)
				r.Post("/checkout", s.handleCheckout)
				r.Post("/back", s.handleBack)
				r.Post("/cancel", s.handleCancel)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(auth.RoleStylist))
				r.Get("/availability/slots", s.handleGenerateSlots)
				r.Post("/availability/validate", s.handleValidateSlots)
				r.Get("/availability/{stylistID}", s.handleAdminAvailability)
				r.Post("/availability/{stylistID}", s.handleCreateAvailability)
				r.Get("/availability/{stylistID}/export", s.handleAdminAvailabilityExport)
				r.Put("/availability/{stylistID}/{recordID}", s.handleUpdateAvailability)
				r.Delete("/availability/{stylistID}/{recordID}", s.handleDeleteAvailability)
				r.Get("/appointments", s.handleAdminAppointments)
			})
		})
	})

	return r
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeEmptyCart sends the client back to service selection.
func writeEmptyCart(w http.ResponseWriter) {
	writeJSON(w, http.StatusConflict, errorResponse{
		Error:    booking.ErrEmptyCart.Error(),
		Redirect: ServicesRoute,
	})
}

// writeDomainError maps package sentinels to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrEmptyCart):
		writeEmptyCart(w)
	case errors.Is(err, booking.ErrInvalidContact):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNoStylist):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotReady),
		errors.Is(err, booking.ErrSubmitInProgress),
		errors.Is(err, slots.ErrNoDate),
		errors.Is(err, slots.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, salonapi.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrInvalidService):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, salonapi.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// decodeJSON reads and validates a request body.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fe.Field() + ": failed " + fe.Tag() + "=" + fe.Param()
	}
	return fe.Field() + ": failed " + fe.Tag()
}
