package customer

import (
	"context"
	"errors"
	"strings"
)

// UnknownName is stored when the identity provider has neither first nor last name
const UnknownName = "Unknown"

// Customer describes a customer row in the record store
type Customer struct {
	RecordID         string  `json:"recordId" gorm:"primaryKey"`        // Assigned by the store, never changes
	BusinessID       string  `json:"businessId,omitempty" gorm:"index"` // Assigned by staff, may change
	Name             string  `json:"name"`                              // "First Last", or UnknownName
	Email            string  `json:"email" gorm:"uniqueIndex;not null"` // Lookup key
	Phone            string  `json:"phone" gorm:"index"`                // Unique at creation time only
	Tier             string  `json:"tier,omitempty"`
	FavoriteCategory string  `json:"favoriteCategory,omitempty"`
	TotalPurchases   float64 `json:"totalPurchases" gorm:"not null;default:0"`
	PurchaseCount    int     `json:"purchaseCount" gorm:"not null;default:0"`
}

// Changes holds the fields the reconciler may write on an existing customer.
// A nil field is left untouched.
type Changes struct {
	Name  *string
	Phone *string
}

// Empty reports whether there is nothing to write
func (c Changes) Empty() bool {
	return c.Name == nil && c.Phone == nil
}

// Apply copies the changed fields onto cust
func (c Changes) Apply(cust *Customer) {
	if c.Name != nil {
		cust.Name = *c.Name
	}
	if c.Phone != nil {
		cust.Phone = *c.Phone
	}
}

// Repository is the customer table of a record store
type Repository interface {
	// FindByEmail returns nil when no customer matches and ErrDuplicateEmail when
	// more than one does.
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	// FindByPhone returns the first customer carrying phone, or nil.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	Create(ctx context.Context, cust *Customer) (*Customer, error)
	Update(ctx context.Context, recordID string, changes Changes) (*Customer, error)
	// Ping checks that the table is reachable.
	Ping(ctx context.Context) error
}

var (
	// ErrDuplicateEmail means the store holds more than one customer for an email
	ErrDuplicateEmail = errors.New("more than one customer shares this email")
	// ErrPhoneTaken means another customer already carries the phone number
	ErrPhoneTaken = errors.New("customer with this phone number already exists")
	// ErrEmailRequired means the input has no email to reconcile on
	ErrEmailRequired = errors.New("email is required")
)

// FullName joins first and last name the way the dashboard displays it
func FullName(firstName, lastName string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		return UnknownName
	}
	return name
}

// NormalizeEmail is the form used for lock keys
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
