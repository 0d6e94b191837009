package db

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/zllovesuki/unaique/order"

	extErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ order.Repository = &Orders{}

// orderRow numbers orders the way the hosted Order Number column does
type orderRow struct {
	Number       uint64 `gorm:"primaryKey;autoIncrement"`
	RecordID     string `gorm:"uniqueIndex;not null"`
	CustomerID   string `gorm:"index"`
	Status       string
	OrderDate    time.Time
	DeliveryDate *time.Time
	UsedCredits  int
}

func (orderRow) TableName() string {
	return "orders"
}

func (r orderRow) toOrder() order.Order {
	return order.Order{
		RecordID:     r.RecordID,
		OrderNumber:  strconv.FormatUint(r.Number, 10),
		CustomerID:   r.CustomerID,
		Status:       order.Status(r.Status),
		OrderDate:    r.OrderDate.UTC(),
		DeliveryDate: utc(r.DeliveryDate),
		UsedCredits:  r.UsedCredits,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Orders is the orders table
type Orders struct {
	db *gorm.DB
}

// NewOrders returns the order repository backed by db
func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

func (s *Orders) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	row := orderRow{
		RecordID:     id,
		CustomerID:   o.CustomerID,
		Status:       string(o.Status),
		OrderDate:    o.OrderDate,
		DeliveryDate: o.DeliveryDate,
		UsedCredits:  o.UsedCredits,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot insert order")
	}
	out := row.toOrder()
	return &out, nil
}

func (s *Orders) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	var rows []orderRow
	if err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("number").Find(&rows).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot list orders")
	}
	out := make([]order.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toOrder())
	}
	return out, nil
}

func (s *Orders) UpdateStatus(ctx context.Context, orderNumber string, status order.Status, deliveryDate time.Time) (*order.Order, error) {
	number, err := strconv.ParseUint(orderNumber, 10, 64)
	if err != nil {
		return nil, order.ErrNotFound
	}
	var row orderRow
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&orderRow{}).Where("number = ?", number).Updates(map[string]interface{}{
			"status":        string(status),
			"delivery_date": deliveryDate,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return order.ErrNotFound
		}
		return tx.Where("number = ?", number).First(&row).Error
	})
	if errors.Is(err, order.ErrNotFound) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot update order status")
	}
	out := row.toOrder()
	return &out, nil
}

func (s *Orders) First(ctx context.Context) (*order.Order, error) {
	var rows []orderRow
	if err := s.db.WithContext(ctx).Order("number").Limit(1).Find(&rows).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot read orders")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	o := rows[0].toOrder()
	return &o, nil
}
