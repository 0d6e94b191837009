package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zllovesuki/unaique/auth"
	"github.com/zllovesuki/unaique/customer"
	resp "github.com/zllovesuki/unaique/response"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate *validator.Validate = validator.New()

// Options contains the configuration for Service router
type Options struct {
	Auth            *auth.Auth
	CustomerManager *customer.Manager
	Logger          *zap.Logger
	Clock           Clock
}

// Service is the session API router
type Service struct {
	Options
}

// SaveRequest is the model of user request to materialize a session
type SaveRequest struct {
	Email string `json:"email" validate:"required"`
}

// NewService will create an instance of the session API router
func NewService(option Options) (*Service, error) {
	if option.Auth == nil {
		return nil, fmt.Errorf("nil Auth is invalid")
	}
	if option.CustomerManager == nil {
		return nil, fmt.Errorf("nil CustomerManager is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	if option.Clock == nil {
		option.Clock = SystemClock{}
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) saveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.WriteError(w, r, resp.ErrInvalidJson())
		return
	}
	if err := validate.Struct(&req); err != nil {
		resp.WriteError(w, r, resp.ErrBadRequest().WithMessage("Email required"))
		return
	}

	clerkID := auth.UserID(r.Context())
	logger := s.Logger.With(
		zap.String("Email", req.Email),
		zap.String("ClerkID", clerkID),
	)

	cust, err := s.CustomerManager.GetByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("Unable to look up customer for session",
			zap.Error(err),
		)
		resp.WriteResponseStatus(w, r, http.StatusInternalServerError, resp.Envelope{
			"success":   false,
			"message":   "Failed to save session",
			"error":     err.Error(),
			"timestamp": s.Clock.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if cust == nil {
		resp.WriteError(w, r, resp.ErrNotFound().WithMessage("Customer not found"))
		return
	}

	record := FromCustomer(cust, clerkID, s.Clock.Now())
	logger.Debug("Session materialized",
		zap.String("RecordID", record.RecordID),
	)
	resp.WriteResponse(w, r, resp.OK("Session saved", resp.Envelope{
		"customer": record,
	}))
}

// Router will return the routes under session API
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.Auth.Middleware())
	r.Post("/save-session", s.saveSession)

	return r
}
