package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/zllovesuki/unaique/lock"

	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// Action tells what Sync did to the store
type Action string

// define constants
const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// SyncInput is the identity provider's view of a user
type SyncInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// SyncResult is the customer after reconciliation
type SyncResult struct {
	Customer *Customer
	Action   Action
}

// ManagerOptions contains the configuration for Manager
type ManagerOptions struct {
	Repository Repository
	Locker     lock.Locker
	Logger     *zap.Logger

	// EnforcePhoneOnUpdate applies the duplicate phone check when an existing
	// customer's phone changes, not only on creation.
	EnforcePhoneOnUpdate bool
}

// Manager reconciles identity provider users with customers in the record store
type Manager struct {
	ManagerOptions
}

// NewManager returns a new Manager for customers
func NewManager(option ManagerOptions) (*Manager, error) {
	if option.Repository == nil {
		return nil, fmt.Errorf("nil Repository is invalid")
	}
	if option.Locker == nil {
		return nil, fmt.Errorf("nil Locker is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Manager{
		ManagerOptions: option,
	}, nil
}

func emailKey(email string) string {
	return "customer:email:" + NormalizeEmail(email)
}

func phoneKey(phone string) string {
	return "customer:phone:" + strings.TrimSpace(phone)
}

// Sync finds the customer by email and updates name/phone when they differ, or
// creates the customer when none exists. At most one write is issued. The phone is
// trimmed first; a blank phone never overwrites a stored one.
func (m *Manager) Sync(ctx context.Context, in SyncInput) (*SyncResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, ErrEmailRequired
	}
	in.Phone = strings.TrimSpace(in.Phone)
	release, err := m.Locker.Acquire(ctx, emailKey(in.Email))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot lock customer email")
	}
	defer release()

	return m.sync(ctx, in)
}

// SyncNew is Sync preceded by the duplicate phone check, for users that were just
// created at the identity provider. When another customer already carries the phone,
// ErrPhoneTaken is returned and nothing is read by email or written.
func (m *Manager) SyncNew(ctx context.Context, in SyncInput) (*SyncResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, ErrEmailRequired
	}

	in.Phone = strings.TrimSpace(in.Phone)

	// phone before email, so SyncNew calls never wait on each other in a cycle
	phone := in.Phone
	if phone != "" {
		releasePhone, err := m.Locker.Acquire(ctx, phoneKey(phone))
		if err != nil {
			return nil, extErrors.Wrap(err, "Cannot lock customer phone")
		}
		defer releasePhone()
	}
	releaseEmail, err := m.Locker.Acquire(ctx, emailKey(in.Email))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot lock customer email")
	}
	defer releaseEmail()

	if err := m.checkPhone(ctx, phone, ""); err != nil {
		return nil, err
	}
	return m.sync(ctx, in)
}

// CheckPhone returns ErrPhoneTaken when a customer already carries phone.
// Empty or whitespace-only phones always pass.
func (m *Manager) CheckPhone(ctx context.Context, phone string) error {
	return m.checkPhone(ctx, strings.TrimSpace(phone), "")
}

// checkPhone ignores a match on exceptRecordID, the customer being updated
func (m *Manager) checkPhone(ctx context.Context, phone, exceptRecordID string) error {
	if phone == "" {
		return nil
	}
	existing, err := m.Repository.FindByPhone(ctx, phone)
	if err != nil {
		return extErrors.Wrap(err, "Cannot look up customer by phone")
	}
	if existing != nil && existing.RecordID != exceptRecordID {
		m.Logger.Warn("Phone number already belongs to a customer",
			zap.String("Phone", phone),
			zap.String("RecordID", existing.RecordID),
		)
		return ErrPhoneTaken
	}
	return nil
}

func (m *Manager) sync(ctx context.Context, in SyncInput) (*SyncResult, error) {
	logger := m.Logger.With(zap.String("Email", in.Email))

	existing, err := m.Repository.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot look up customer by email")
	}

	fullName := FullName(in.FirstName, in.LastName)

	if existing == nil {
		created, err := m.Repository.Create(ctx, &Customer{
			Name:           fullName,
			Email:          in.Email,
			Phone:          in.Phone,
			TotalPurchases: 0,
			PurchaseCount:  0,
		})
		if err != nil {
			return nil, extErrors.Wrap(err, "Cannot create customer")
		}
		logger.Info("Customer created",
			zap.String("RecordID", created.RecordID),
		)
		return &SyncResult{Customer: created, Action: ActionCreated}, nil
	}

	var changes Changes
	if existing.Name != fullName {
		changes.Name = &fullName
	}
	if in.Phone != "" && existing.Phone != in.Phone {
		phone := in.Phone
		changes.Phone = &phone
	}

	if changes.Empty() {
		logger.Debug("Customer is up to date",
			zap.String("RecordID", existing.RecordID),
		)
		return &SyncResult{Customer: existing, Action: ActionUnchanged}, nil
	}

	if changes.Phone != nil && m.EnforcePhoneOnUpdate {
		if err := m.checkPhone(ctx, *changes.Phone, existing.RecordID); err != nil {
			return nil, err
		}
	}

	updated, err := m.Repository.Update(ctx, existing.RecordID, changes)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot update customer")
	}
	logger.Info("Customer updated",
		zap.String("RecordID", updated.RecordID),
		zap.Bool("Name", changes.Name != nil),
		zap.Bool("Phone", changes.Phone != nil),
	)
	return &SyncResult{Customer: updated, Action: ActionUpdated}, nil
}

// GetByEmail returns the customer for email, or nil when there is none
func (m *Manager) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	cust, err := m.Repository.FindByEmail(ctx, email)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot get customer by email")
	}
	return cust, nil
}

// Ping checks the customer table is reachable
func (m *Manager) Ping(ctx context.Context) error {
	return m.Repository.Ping(ctx)
}
