package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// ManagerOptions contains the configuration for Manager
type ManagerOptions struct {
	Repository Repository
	Logger     *zap.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// Manager handles orders and the projects view of them
type Manager struct {
	ManagerOptions
}

// NewManager returns a new Manager for orders
func NewManager(option ManagerOptions) (*Manager, error) {
	if option.Repository == nil {
		return nil, fmt.Errorf("nil Repository is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	if option.Now == nil {
		option.Now = time.Now
	}
	return &Manager{
		ManagerOptions: option,
	}, nil
}

// Create opens a new order for customerID in the creating state with no credits used
func (m *Manager) Create(ctx context.Context, customerID string) (*Order, error) {
	created, err := m.Repository.Create(ctx, &Order{
		CustomerID:  customerID,
		Status:      StatusCreating,
		OrderDate:   m.Now().UTC(),
		UsedCredits: 0,
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot create order")
	}
	m.Logger.Info("Order created",
		zap.String("BusinessID", customerID),
		zap.String("OrderNumber", created.OrderNumber),
	)
	return created, nil
}

// Projects returns the orders of customerID
func (m *Manager) Projects(ctx context.Context, customerID string) ([]Order, error) {
	orders, err := m.Repository.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot list orders")
	}
	return orders, nil
}

// Cancel marks the order cancelled and stamps its delivery date
func (m *Manager) Cancel(ctx context.Context, orderNumber string) (*Order, error) {
	updated, err := m.Repository.UpdateStatus(ctx, orderNumber, StatusCancelled, m.Now().UTC())
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot cancel order")
	}
	m.Logger.Info("Order cancelled",
		zap.String("OrderNumber", orderNumber),
	)
	return updated, nil
}

// Sample returns one order to inspect the store's Status column, or nil when empty
func (m *Manager) Sample(ctx context.Context) (*Order, error) {
	o, err := m.Repository.First(ctx)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot read orders table")
	}
	return o, nil
}
