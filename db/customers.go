package db

import (
	"context"
	"errors"
	"strings"

	"github.com/zllovesuki/unaique/customer"

	"github.com/google/uuid"
	extErrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ customer.Repository = &Customers{}

// ErrRecordNotFound is returned when updating a record id that does not exist
var ErrRecordNotFound = errors.New("record not found")

// Customers is the customers table
type Customers struct {
	db *gorm.DB
}

// NewCustomers returns the customer repository backed by db
func NewCustomers(db *gorm.DB) *Customers {
	return &Customers{db: db}
}

// newRecordID returns a time ordered id so tables list in insertion order
func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", extErrors.Wrap(err, "Cannot generate record id")
	}
	return id.String(), nil
}

func (c *Customers) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var rows []customer.Customer
	if err := c.db.WithContext(ctx).Where("email = ?", email).Limit(2).Find(&rows).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot query customers by email")
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, customer.ErrDuplicateEmail
	}
}

func (c *Customers) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	var rows []customer.Customer
	if err := c.db.WithContext(ctx).Where("phone = ?", strings.TrimSpace(phone)).Order("record_id").Limit(1).Find(&rows).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot query customers by phone")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Create inserts cust unless a customer with the same email exists, in which case
// the existing row is returned.
func (c *Customers) Create(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	row := *cust
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	row.RecordID = id

	result := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return nil, extErrors.Wrap(result.Error, "Cannot insert customer")
	}
	if result.RowsAffected == 0 {
		existing, err := c.FindByEmail(ctx, cust.Email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, extErrors.New("customer vanished after email conflict")
		}
		return existing, nil
	}
	return &row, nil
}

func (c *Customers) Update(ctx context.Context, recordID string, changes customer.Changes) (*customer.Customer, error) {
	fields := map[string]interface{}{}
	if changes.Name != nil {
		fields["name"] = *changes.Name
	}
	if changes.Phone != nil {
		fields["phone"] = *changes.Phone
	}

	var row customer.Customer
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			result := tx.Model(&customer.Customer{}).Where("record_id = ?", recordID).Updates(fields)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrRecordNotFound
			}
		}
		return tx.Where("record_id = ?", recordID).First(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot update customer")
	}
	return &row, nil
}

func (c *Customers) Ping(ctx context.Context) error {
	return Ping(ctx, c.db)
}
