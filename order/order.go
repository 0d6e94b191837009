package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Status is the production state of an order
type Status string

// define constants
const (
	StatusCreating  Status = "생성중"
	StatusDone      Status = "완료"
	StatusCancelled Status = "취소"
	StatusFailed    Status = "에러종료"
)

// Statuses lists the options of the store's Status column
func Statuses() []Status {
	return []Status{StatusCreating, StatusDone, StatusCancelled, StatusFailed}
}

// ErrNotFound is returned when no order carries the order number
var ErrNotFound = errors.New("order not found")

// Order is a video project ordered by a customer
type Order struct {
	RecordID     string     `json:"recordId"`
	OrderNumber  string     `json:"orderNumber"`
	CustomerID   string     `json:"businessId"`
	Status       Status     `json:"status"`
	OrderDate    time.Time  `json:"orderDate"`
	DeliveryDate *time.Time `json:"deliveryDate,omitempty"`
	UsedCredits  int        `json:"usedCredits"`
}

// Repository is the order table of a record store
type Repository interface {
	// Create stores order and returns it with RecordID and OrderNumber assigned
	Create(ctx context.Context, order *Order) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	// UpdateStatus returns ErrNotFound when orderNumber does not exist
	UpdateStatus(ctx context.Context, orderNumber string, status Status, deliveryDate time.Time) (*Order, error)
	// First returns any one order, or nil when the table is empty
	First(ctx context.Context) (*Order, error)
}

// Number is an order number sent either as a JSON number or a string
type Number string

// UnmarshalJSON accepts 12, "12" and null
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Number(num.String())
	return nil
}

func (n Number) String() string {
	return string(n)
}
