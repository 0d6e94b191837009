package idea

import (
	"encoding/json"
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
	Auth        *auth.Auth
	IdeaManager *Manager
	Logger      *zap.Logger
}

// Service is the content idea API router
type Service struct {
	Options
}

// CreateRequest is the model of user request to submit an idea. The dashboard
// sends the Korean column names, API clients may use the English keys.
type CreateRequest struct {
	BusinessID string `json:"businessId" validate:"required"`
	Idea       string `json:"idea" validate:"required"`
	Subtitle   string `json:"subtitle" validate:"required"`
	Background string `json:"background" validate:"required"`
}

// UnmarshalJSON accepts both key sets, English keys win when both are present
func (c *CreateRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		BusinessID   string `json:"businessId"`
		Idea         string `json:"idea"`
		Subtitle     string `json:"subtitle"`
		Background   string `json:"background"`
		IdeaKO       string `json:"아이디어"`
		SubtitleKO   string `json:"자막"`
		BackgroundKO string `json:"배경 설명"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.BusinessID = raw.BusinessID
	c.Idea = firstNonEmpty(raw.Idea, raw.IdeaKO)
	c.Subtitle = firstNonEmpty(raw.Subtitle, raw.SubtitleKO)
	c.Background = firstNonEmpty(raw.Background, raw.BackgroundKO)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewService will create an instance of the content idea API router
func NewService(option Options) (*Service, error) {
	if option.Auth == nil {
		return nil, fmt.Errorf("nil Auth is invalid")
	}
	if option.IdeaManager == nil {
		return nil, fmt.Errorf("nil IdeaManager is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) createIdea(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.WriteError(w, r, resp.ErrInvalidJson())
		return
	}
	if err := validate.Struct(&req); err != nil {
		resp.WriteError(w, r, resp.ErrBadRequest().
			AddMessages("Business ID, idea, subtitle and background are required"))
		return
	}

	logger := s.Logger.With(
		zap.String("BusinessID", req.BusinessID),
		zap.String("UserID", auth.UserID(r.Context())),
	)

	created, err := s.IdeaManager.Create(r.Context(), req.BusinessID, req.Idea, req.Subtitle, req.Background)
	if err != nil {
		logger.Error("Unable to create content idea",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().AddMessages("Failed to create content idea"))
		return
	}

	resp.WriteResponse(w, r, resp.OK("Content idea created", resp.Envelope{
		"id":       created.ID,
		"recordId": created.RecordID,
	}))
}

// Router will return the routes under content idea API
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.Auth.Middleware())
	r.Post("/", s.createIdea)
	r.Post("/create", s.createIdea)

	return r
}
