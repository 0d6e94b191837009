package customer

import (
	"fmt"
	"net/http"
	"time"

	resp "github.com/zllovesuki/unaique/response"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// Options contains the configuration for Service router
type Options struct {
	CustomerManager *Manager
	Logger          *zap.Logger
}

// Service is the record store health router
type Service struct {
	Options
}

// NewService will create an instance of the health router
func NewService(option Options) (*Service, error) {
	if option.CustomerManager == nil {
		return nil, fmt.Errorf("nil CustomerManager is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) checkStore(w http.ResponseWriter, r *http.Request) {
	if err := s.CustomerManager.Ping(r.Context()); err != nil {
		s.Logger.Warn("Record store connection failed",
			zap.Error(err),
		)
		resp.WriteError(w, r, resp.ErrUnexpected().
			WithMessage(err.Error()).
			AddMessages("Record store connection failed"))
		return
	}
	resp.WriteResponse(w, r, resp.OK("Record store connection successful", resp.Envelope{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))
}

// Router will return the routes under health API
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/store", s.checkStore)

	return r
}
