package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zllovesuki/unaique/auth"
	resp "github.com/zllovesuki/unaique/response"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate *validator.Validate = validator.New()

// Options contains the configuration for Service router
type Options struct {
	Auth            *auth.Auth
	TemplateManager *Manager
	Logger          *zap.Logger
}

// Service is the template API router
type Service struct {
	Options
}

// LikeRequest is the model of user request to like a template
type LikeRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
}

// NewService will create an instance of the template API router
func NewService(option Options) (*Service, error) {
	if option.Auth == nil {
		return nil, fmt.Errorf("nil Auth is invalid")
	}
	if option.TemplateManager == nil {
		return nil, fmt.Errorf("nil TemplateManager is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.TemplateManager.List(r.Context())
	if err != nil {
		s.Logger.Error("Unable to list templates",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().AddMessages("Failed to fetch templates"))
		return
	}
	resp.WriteResponse(w, r, resp.OK("", resp.Envelope{
		"templates": templates,
	}))
}

func (s *Service) seedTemplates(w http.ResponseWriter, r *http.Request) {
	added, err := s.TemplateManager.Seed(r.Context())
	if err != nil {
		s.Logger.Error("Unable to seed templates",
			zap.Int("Added", len(added)),
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().
			AddMessages("Failed to add templates").
			WithResult(resp.Envelope{"added": len(added)}))
		return
	}
	resp.WriteResponse(w, r, resp.OK(fmt.Sprintf("Added %d templates", len(added)), resp.Envelope{
		"count": len(added),
	}))
}

func (s *Service) likeTemplate(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.WriteError(w, r, resp.ErrInvalidJson())
		return
	}
	if err := validate.Struct(&req); err != nil {
		resp.WriteError(w, r, resp.ErrBadRequest().AddMessages("Template ID is required"))
		return
	}

	logger := s.Logger.With(zap.String("TemplateID", req.TemplateID))

	likes, err := s.TemplateManager.Like(r.Context(), req.TemplateID)
	if errors.Is(err, ErrNotFound) {
		resp.WriteError(w, r, resp.ErrNotFound().AddMessages("Template not found"))
		return
	}
	if err != nil {
		logger.Error("Unable to like template",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().AddMessages("Failed to update like"))
		return
	}
	resp.WriteResponse(w, r, resp.OK("", resp.Envelope{
		"newLike": likes,
	}))
}

func (s *Service) checkTable(w http.ResponseWriter, r *http.Request) {
	templates, err := s.TemplateManager.List(r.Context())
	if err != nil {
		s.Logger.Warn("Template table check failed",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().
			WithMessage("Templates table not reachable").
			WithResult(resp.Envelope{"tableExists": false}))
		return
	}
	resp.WriteResponse(w, r, resp.OK("Templates table is reachable", resp.Envelope{
		"tableExists": true,
		"count":       len(templates),
	}))
}

// Router will return the routes under template API
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.listTemplates)
	r.Get("/check-table", s.checkTable)

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.Middleware())
		r.Post("/", s.seedTemplates)
		r.Post("/add", s.seedTemplates)
		r.Post("/like", s.likeTemplate)
	})

	return r
}
