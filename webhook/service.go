package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zllovesuki/unaique/broker"
	"github.com/zllovesuki/unaique/customer"
	resp "github.com/zllovesuki/unaique/response"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Options contains the configuration for Service router
type Options struct {
	Verifier        *Verifier
	CustomerManager *customer.Manager
	Publisher       broker.Publisher
	Logger          *zap.Logger
}

// Service is the Clerk webhook router
type Service struct {
	Options
}

// outcome is a successful webhook response
type outcome struct {
	Message string
	Headers map[string]string
}

// handler processes one event type. Exactly one of the results is non-nil.
type handler func(ctx context.Context, logger *zap.Logger, evt *Event) (*outcome, *resp.Error)

// NewService will create an instance of the webhook router
func NewService(option Options) (*Service, error) {
	if option.Verifier == nil {
		return nil, fmt.Errorf("nil Verifier is invalid")
	}
	if option.CustomerManager == nil {
		return nil, fmt.Errorf("nil CustomerManager is invalid")
	}
	if option.Publisher == nil {
		return nil, fmt.Errorf("nil Publisher is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Service{
		Options: option,
	}, nil
}

func (s *Service) handleClerk(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			s.Logger.Error("Webhook processing panicked",
				zap.Any("Panic", p),
			)
			resp.WriteErrorText(w, r, resp.ErrUnexpected().WithMessage("Internal server error"))
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		resp.WriteErrorText(w, r, resp.ErrBadRequest().WithMessage("Error occured -- unreadable body"))
		return
	}

	if err := s.Verifier.Verify(body, r.Header); err != nil {
		switch {
		case errors.Is(err, ErrMissingHeaders):
			s.Logger.Warn("Webhook without svix headers")
			resp.WriteErrorText(w, r, resp.ErrBadRequest().WithMessage("Error occured -- no svix headers"))
		case errors.Is(err, ErrNotConfigured):
			s.Logger.Error("CLERK_WEBHOOK_SECRET is not configured")
			resp.WriteErrorText(w, r, resp.ErrMisconfigured().WithMessage("Webhook secret not configured"))
		default:
			s.Logger.Warn("Webhook signature rejected",
				zap.Error(err),
			)
			resp.WriteErrorText(w, r, resp.ErrBadRequest().WithMessage("Error occured"))
		}
		return
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		s.Logger.Warn("Verified webhook is not an event",
			zap.Error(err),
		)
		resp.WriteErrorText(w, r, resp.ErrBadRequest().WithMessage("Error occured -- invalid payload"))
		return
	}

	logger := s.Logger.With(
		zap.String("Type", evt.Type),
		zap.String("MessageID", r.Header.Get(HeaderID)),
	)

	var out *outcome
	var e *resp.Error
	switch evt.Type {
	case EventUserCreated:
		out, e = s.guard(r.Context(), logger, &evt, s.userCreated, "Error syncing user to Airtable")
	case EventUserUpdated:
		out, e = s.guard(r.Context(), logger, &evt, s.userUpdated, "Error syncing updated user to Airtable")
	case EventUserDeleted:
		out, e = s.guard(r.Context(), logger, &evt, s.userDeleted, "Error processing user deletion")
	default:
		logger.Debug("Event ignored")
		out = &outcome{Message: "Event ignored"}
	}

	if e != nil {
		resp.WriteErrorText(w, r, e)
		return
	}
	resp.WriteText(w, r, http.StatusOK, out.Message, out.Headers)
}

// guard runs h so that a panic becomes failMessage with status 500
func (s *Service) guard(ctx context.Context, logger *zap.Logger, evt *Event, h handler, failMessage string) (out *outcome, e *resp.Error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Event handler panicked",
				zap.Any("Panic", p),
			)
			out, e = nil, resp.ErrUnexpected().WithMessage(failMessage)
		}
	}()
	return h(ctx, logger, evt)
}

func decodeUser(evt *Event) (*User, *resp.Error) {
	var u User
	if err := json.Unmarshal(evt.Data, &u); err != nil {
		return nil, resp.ErrBadRequest().WithMessage("Invalid user payload")
	}
	return &u, nil
}

func primaryEmail(u *User, missingMessage string) (string, *resp.Error) {
	email, err := u.PrimaryEmail()
	switch {
	case errors.Is(err, ErrNoEmail):
		return "", resp.ErrBadRequest().WithMessage(missingMessage)
	case errors.Is(err, ErrPrimaryEmailNotFound):
		return "", resp.ErrBadRequest().WithMessage("Primary email not found")
	}
	return email, nil
}

func syncInput(u *User, email string) customer.SyncInput {
	return customer.SyncInput{
		Email:     email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.FirstPhone(),
	}
}

func (s *Service) userCreated(ctx context.Context, logger *zap.Logger, evt *Event) (*outcome, *resp.Error) {
	u, e := decodeUser(evt)
	if e != nil {
		return nil, e
	}
	email, e := primaryEmail(u, "User created without email address")
	if e != nil {
		logger.Warn("Created user has no usable email", zap.String("ClerkID", u.ID))
		return nil, e
	}
	logger = logger.With(zap.String("Email", email), zap.String("ClerkID", u.ID))

	res, err := s.CustomerManager.SyncNew(ctx, syncInput(u, email))
	if errors.Is(err, customer.ErrPhoneTaken) {
		return nil, resp.ErrConflict().WithMessage("Customer with this phone number already exists")
	}
	if err != nil {
		logger.Error("Unable to sync created user",
			zap.Error(err),
		)
		return nil, resp.ErrUnexpected().WithMessage("Error syncing user to Airtable")
	}

	s.publish(ctx, logger, res, u.ID)

	return &outcome{
		Message: "Customer created successfully",
		Headers: map[string]string{
			"X-Customer-ID":    res.Customer.RecordID,
			"X-Customer-Email": res.Customer.Email,
			"X-Clerk-User-ID":  u.ID,
		},
	}, nil
}

func (s *Service) userUpdated(ctx context.Context, logger *zap.Logger, evt *Event) (*outcome, *resp.Error) {
	u, e := decodeUser(evt)
	if e != nil {
		return nil, e
	}
	email, e := primaryEmail(u, "User updated without email address")
	if e != nil {
		logger.Warn("Updated user has no usable email", zap.String("ClerkID", u.ID))
		return nil, e
	}
	logger = logger.With(zap.String("Email", email), zap.String("ClerkID", u.ID))

	res, err := s.CustomerManager.Sync(ctx, syncInput(u, email))
	if errors.Is(err, customer.ErrPhoneTaken) {
		return nil, resp.ErrConflict().WithMessage("Customer with this phone number already exists")
	}
	if err != nil {
		logger.Error("Unable to sync updated user",
			zap.Error(err),
		)
		return nil, resp.ErrUnexpected().WithMessage("Error syncing updated user to Airtable")
	}

	s.publish(ctx, logger, res, u.ID)

	return &outcome{Message: "Customer updated successfully"}, nil
}

// userDeleted leaves the customer in place; downstream consumers decide what to do
func (s *Service) userDeleted(ctx context.Context, logger *zap.Logger, evt *Event) (*outcome, *resp.Error) {
	var d DeletedUser
	if err := json.Unmarshal(evt.Data, &d); err != nil {
		return nil, resp.ErrBadRequest().WithMessage("Invalid user payload")
	}
	logger.Warn("User deleted at identity provider, customer record kept",
		zap.String("ClerkID", d.ID),
	)
	if err := s.Publisher.Publish(ctx, broker.NewEvent(broker.EventIdentityDeleted, map[string]string{
		"clerkId": d.ID,
	})); err != nil {
		logger.Warn("Unable to publish deletion", zap.Error(err))
	}
	return &outcome{Message: "User deletion processed"}, nil
}

func (s *Service) publish(ctx context.Context, logger *zap.Logger, res *customer.SyncResult, clerkID string) {
	var name string
	switch res.Action {
	case customer.ActionCreated:
		name = broker.EventCustomerCreated
	case customer.ActionUpdated:
		name = broker.EventCustomerUpdated
	default:
		return
	}
	if err := s.Publisher.Publish(ctx, broker.NewEvent(name, map[string]interface{}{
		"clerkId":  clerkID,
		"customer": res.Customer,
	})); err != nil {
		logger.Warn("Unable to publish customer change", zap.Error(err))
	}
}

// Router will return the routes under webhook API
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/clerk", s.handleClerk)

	return r
}
