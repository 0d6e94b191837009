package broker

import (
	"context"
	"time"
)

// define event names
const (
	EventCustomerCreated   = "customer.created"
	EventCustomerUpdated   = "customer.updated"
	EventIdentityDeleted   = "identity.deleted"
	EventPipelineTriggered = "pipeline.triggered"
)

// Event is a customer lifecycle notification
type Event struct {
	Name       string      `json:"event"`
	Version    int         `json:"version"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// NewEvent stamps data with the current time
func NewEvent(name string, data interface{}) Event {
	return Event{
		Name:       name,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher defines the interface for publishing notifications via message broker
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// Nop drops every event, used when no broker is configured
type Nop struct{}

var _ Publisher = Nop{}

func (Nop) Publish(ctx context.Context, e Event) error {
	return nil
}

func (Nop) Close() {}
