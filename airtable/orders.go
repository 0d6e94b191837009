package airtable

import (
	"context"
	"time"

	"github.com/zllovesuki/unaique/order"

	at "github.com/mehanizm/airtable"
	extErrors "github.com/pkg/errors"
)

var _ order.Repository = &Orders{}

// Orders is the Orders table
type Orders struct {
	table *at.Table
}

func toOrder(r *at.Record) order.Order {
	o := order.Order{
		RecordID:     r.ID,
		OrderNumber:  str(r, fieldOrderNumber),
		CustomerID:   str(r, fieldCustomer),
		Status:       order.Status(str(r, fieldStatus)),
		DeliveryDate: timestamp(r, fieldDeliveryDate),
		UsedCredits:  integer(r, fieldUsedCredits),
	}
	if t := timestamp(r, fieldOrderDate); t != nil {
		o.OrderDate = *t
	}
	return o
}

func (s *Orders) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created, err := s.table.AddRecords(&at.Records{
		Records: []*at.Record{{Fields: map[string]interface{}{
			fieldCustomer:    o.CustomerID,
			fieldStatus:      string(o.Status),
			fieldOrderDate:   formatTime(o.OrderDate),
			fieldUsedCredits: o.UsedCredits,
		}}},
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot add order record")
	}
	r, err := single(created)
	if err != nil {
		return nil, err
	}
	out := toOrder(r)
	return &out, nil
}

func (s *Orders) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	records, err := list(ctx, s.table, equalsText(fieldCustomer, customerID), 0)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot list order records")
	}
	out := make([]order.Order, 0, len(records))
	for _, r := range records {
		out = append(out, toOrder(r))
	}
	return out, nil
}

func (s *Orders) UpdateStatus(ctx context.Context, orderNumber string, status order.Status, deliveryDate time.Time) (*order.Order, error) {
	record, err := first(ctx, s.table, equalsText(fieldOrderNumber, orderNumber))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot find order record")
	}
	if record == nil {
		return nil, order.ErrNotFound
	}
	updated, err := s.table.UpdateRecordsPartial(&at.Records{
		Records: []*at.Record{{ID: record.ID, Fields: map[string]interface{}{
			fieldStatus:       string(status),
			fieldDeliveryDate: formatTime(deliveryDate),
		}}},
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot update order status")
	}
	r, err := single(updated)
	if err != nil {
		return nil, err
	}
	out := toOrder(r)
	return &out, nil
}

func (s *Orders) First(ctx context.Context) (*order.Order, error) {
	record, err := first(ctx, s.table, "")
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot read order records")
	}
	if record == nil {
		return nil, nil
	}
	o := toOrder(record)
	return &o, nil
}
