package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zllovesuki/unaique/auth"
	"github.com/zllovesuki/unaique/broker"
	resp "github.com/zllovesuki/unaique/response"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// Options contains the configuration for Service router
type Options struct {
	Auth      *auth.Auth
	Trigger   *Trigger
	Publisher broker.Publisher
	Logger    *zap.Logger
}

// Service is the n8n API router
type Service struct {
	Options
}

// TriggerRequest is the model of user request to start a pipeline
type TriggerRequest struct {
	PipelineName   string                 `json:"pipelineName"`
	AdditionalData map[string]interface{} `json:"additionalData"`
}

// NewService will create an instance of the n8n API router
func NewService(option Options) (*Service, error) {
	if option.Auth == nil {
		return nil, fmt.Errorf("nil Auth is invalid")
	}
	if option.Trigger == nil {
		return nil, fmt.Errorf("nil Trigger is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	if option.Publisher == nil {
		option.Publisher = broker.Nop{}
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) triggerPipeline(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		resp.WriteError(w, r, resp.ErrInvalidJson())
		return
	}

	userID := auth.UserID(r.Context())
	logger := s.Logger.With(
		zap.String("ClerkID", userID),
		zap.String("Pipeline", req.PipelineName),
	)

	result, err := s.Trigger.Fire(r.Context(), Run{
		Pipeline:       req.PipelineName,
		UserID:         userID,
		AdditionalData: req.AdditionalData,
	})

	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrNotConfigured):
		logger.Error("N8N_WEBHOOK_URL is not set")
		resp.WriteError(w, r, resp.ErrMisconfigured().AddMessages("n8n webhook URL is not configured"))
		return
	case errors.As(err, &upstream):
		logger.Error("Pipeline trigger rejected by n8n",
			zap.Int("Status", upstream.StatusCode),
			zap.String("Body", upstream.Body),
		)
		resp.WriteResponseStatus(w, r, upstream.StatusCode, resp.Envelope{
			"success":     false,
			"message":     "Failed to trigger n8n pipeline",
			"error":       upstream.Error(),
			"n8nResponse": upstream.Body,
		})
		return
	case err != nil:
		logger.Error("Unable to trigger pipeline",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().
			WithMessage(err.Error()).
			AddMessages("Error while triggering n8n pipeline"))
		return
	}

	logger.Info("Pipeline triggered")
	if err := s.Publisher.Publish(r.Context(), broker.NewEvent(broker.EventPipelineTriggered, map[string]string{
		"pipeline": result.Pipeline,
		"userId":   result.UserID,
	})); err != nil {
		logger.Warn("Unable to publish pipeline trigger", zap.Error(err))
	}

	resp.WriteResponse(w, r, resp.OK("n8n pipeline triggered", resp.Envelope{
		"pipeline":    result.Pipeline,
		"userId":      result.UserID,
		"timestamp":   result.Timestamp,
		"n8nResponse": result.Response,
	}))
}

// Router will return the routes under n8n API
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.Auth.Middleware())
	r.Post("/trigger-pipeline", s.triggerPipeline)

	return r
}
