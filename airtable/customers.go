package airtable

import (
	"context"
	"strings"

	"github.com/zllovesuki/unaique/customer"

	at "github.com/mehanizm/airtable"
	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

var _ customer.Repository = &Customers{}

// Customers is the Customers table
type Customers struct {
	table  *at.Table
	logger *zap.Logger
}

func toCustomer(r *at.Record) *customer.Customer {
	return &customer.Customer{
		RecordID:         r.ID,
		BusinessID:       str(r, fieldCustomerID),
		Name:             str(r, fieldName),
		Email:            str(r, fieldEmail),
		Phone:            str(r, fieldPhone),
		Tier:             str(r, fieldTier),
		FavoriteCategory: str(r, fieldFavoriteCategory),
		TotalPurchases:   num(r, fieldTotalPurchases),
		PurchaseCount:    integer(r, fieldPurchaseCount),
	}
}

// FindByEmail asks for two rows so a duplicate is detected instead of hidden
func (c *Customers) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	records, err := list(ctx, c.table, equals(fieldEmail, email), 2)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot query customers by email")
	}
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return toCustomer(records[0]), nil
	default:
		c.logger.Error("More than one customer shares an email",
			zap.String("Email", email),
			zap.String("First", records[0].ID),
			zap.String("Second", records[1].ID),
		)
		return nil, customer.ErrDuplicateEmail
	}
}

func (c *Customers) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	record, err := first(ctx, c.table, equals(fieldPhone, strings.TrimSpace(phone)))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot query customers by phone")
	}
	if record == nil {
		return nil, nil
	}
	return toCustomer(record), nil
}

func (c *Customers) Create(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		fieldName:           cust.Name,
		fieldEmail:          cust.Email,
		fieldTotalPurchases: cust.TotalPurchases,
		fieldPurchaseCount:  cust.PurchaseCount,
	}
	if cust.Phone != "" {
		fields[fieldPhone] = cust.Phone
	}
	if cust.Tier != "" {
		fields[fieldTier] = cust.Tier
	}
	if cust.FavoriteCategory != "" {
		fields[fieldFavoriteCategory] = cust.FavoriteCategory
	}
	created, err := c.table.AddRecords(&at.Records{
		Records: []*at.Record{{Fields: fields}},
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot add customer record")
	}
	record, err := single(created)
	if err != nil {
		return nil, err
	}
	return toCustomer(record), nil
}

func (c *Customers) Update(ctx context.Context, recordID string, changes customer.Changes) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if changes.Name != nil {
		fields[fieldName] = *changes.Name
	}
	if changes.Phone != nil {
		fields[fieldPhone] = *changes.Phone
	}
	updated, err := c.table.UpdateRecordsPartial(&at.Records{
		Records: []*at.Record{{ID: recordID, Fields: fields}},
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot update customer record")
	}
	record, err := single(updated)
	if err != nil {
		return nil, err
	}
	return toCustomer(record), nil
}

func (c *Customers) Ping(ctx context.Context) error {
	if _, err := list(ctx, c.table, "", 1); err != nil {
		return extErrors.Wrap(err, "Cannot read customers table")
	}
	return nil
}
