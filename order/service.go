package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zllovesuki/unaique/auth"
	resp "github.com/zllovesuki/unaique/response"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate *validator.Validate = validator.New()

// Options contains the configuration for Service router
type Options struct {
	Auth         *auth.Auth
	OrderManager *Manager
	Logger       *zap.Logger
}

// Service serves the orders and projects APIs
type Service struct {
	Options
}

// CreateRequest is the model of user request to order a video. ContentIdeaID and
// Status are required but not stored: new orders always start in StatusCreating.
type CreateRequest struct {
	BusinessID    string `json:"businessId" validate:"required"`
	ContentIdeaID string `json:"contentIdeaId" validate:"required"`
	Status        string `json:"status" validate:"required"`
}

// CancelRequest is the model of user request to cancel a project
type CancelRequest struct {
	OrderNumber Number `json:"orderNumber" validate:"required"`
}

// NewService will create an instance of the order API router
func NewService(option Options) (*Service, error) {
	if option.Auth == nil {
		return nil, fmt.Errorf("nil Auth is invalid")
	}
	if option.OrderManager == nil {
		return nil, fmt.Errorf("nil OrderManager is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.WriteError(w, r, resp.ErrInvalidJson())
		return
	}
	if err := validate.Struct(&req); err != nil {
		resp.WriteError(w, r, resp.ErrBadRequest().
			AddMessages("Business ID, content idea ID and status are required"))
		return
	}

	logger := s.Logger.With(
		zap.String("BusinessID", req.BusinessID),
		zap.String("ContentIdeaID", req.ContentIdeaID),
	)

	created, err := s.OrderManager.Create(r.Context(), req.BusinessID)
	if err != nil {
		logger.Error("Unable to create order",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().AddMessages("Failed to create order"))
		return
	}

	resp.WriteResponse(w, r, resp.OK("Order created", resp.Envelope{
		"orderNumber": created.OrderNumber,
	}))
}

func (s *Service) statusOptions(w http.ResponseWriter, r *http.Request) {
	sample, err := s.OrderManager.Sample(r.Context())
	if err != nil {
		s.Logger.Error("Unable to read orders table",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().
			WithMessage("Orders table not reachable").
			WithResult(resp.Envelope{"tableExists": false}))
		return
	}

	if sample == nil {
		resp.WriteResponse(w, r, resp.OK("Orders table has no records", resp.Envelope{
			"tableExists":  true,
			"recordCount":  0,
			"statusField":  nil,
			"sampleRecord": nil,
			"statuses":     Statuses(),
		}))
		return
	}

	resp.WriteResponse(w, r, resp.OK("Orders table status field read", resp.Envelope{
		"tableExists": true,
		"recordCount": 1,
		"statusField": resp.Envelope{
			"value": sample.Status,
			"known": isKnown(sample.Status),
		},
		"sampleRecord": sample,
		"statuses":     Statuses(),
	}))
}

func isKnown(status Status) bool {
	for _, s := range Statuses() {
		if s == status {
			return true
		}
	}
	return false
}

func (s *Service) listProjects(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("businessId"))
	if businessID == "" {
		resp.WriteError(w, r, resp.ErrBadRequest().AddMessages("Business ID is required"))
		return
	}

	projects, err := s.OrderManager.Projects(r.Context(), businessID)
	if err != nil {
		s.Logger.Error("Unable to list projects",
			zap.String("BusinessID", businessID),
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().AddMessages("Failed to fetch projects"))
		return
	}

	resp.WriteResponse(w, r, resp.OK("", resp.Envelope{
		"projects": projects,
		"count":    len(projects),
	}))
}

func (s *Service) cancelProject(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.WriteError(w, r, resp.ErrInvalidJson())
		return
	}
	if err := validate.Struct(&req); err != nil {
		resp.WriteError(w, r, resp.ErrBadRequest().AddMessages("Order number is required"))
		return
	}

	logger := s.Logger.With(zap.String("OrderNumber", req.OrderNumber.String()))

	_, err := s.OrderManager.Cancel(r.Context(), req.OrderNumber.String())
	if errors.Is(err, ErrNotFound) {
		resp.WriteError(w, r, resp.ErrNotFound().AddMessages("Order not found"))
		return
	}
	if err != nil {
		logger.Error("Unable to cancel project",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().AddMessages("Failed to cancel project"))
		return
	}

	resp.WriteResponse(w, r, resp.OK("Project cancelled", resp.Envelope{
		"orderNumber": req.OrderNumber,
	}))
}

// OrdersRouter will return the routes under order API
func (s *Service) OrdersRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.Auth.Middleware())
	r.Post("/", s.createOrder)
	r.Post("/create", s.createOrder)
	r.Get("/status-options", s.statusOptions)
	r.Get("/check-status-options", s.statusOptions)

	return r
}

// ProjectsRouter will return the routes under projects API
func (s *Service) ProjectsRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.Auth.Middleware())
	r.Get("/", s.listProjects)
	r.Get("/list", s.listProjects)
	r.Post("/cancel", s.cancelProject)

	return r
}
