// Package airtable stores customers, templates, content ideas and orders in an
// Airtable base.
package airtable

import (
	"context"
	"fmt"

	at "github.com/mehanizm/airtable"
	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// define table names
const (
	CustomersTable = "Customers"
	TemplatesTable = "Templates"
	IdeasTable     = "Content Ideas"
	OrdersTable    = "Orders"
)

// Options contains the configuration for Client
type Options struct {
	APIKey string
	BaseID string
	// BaseURL overrides the Airtable API endpoint, used against fakes
	BaseURL string
	Logger  *zap.Logger
}

func (o *Options) validate() error {
	if o == nil {
		return fmt.Errorf("nil option is invalid")
	}
	if o.APIKey == "" {
		return fmt.Errorf("Empty APIKey is invalid")
	}
	if o.BaseID == "" {
		return fmt.Errorf("Empty BaseID is invalid")
	}
	if o.Logger == nil {
		return fmt.Errorf("nil Logger is invalid")
	}
	return nil
}

// Client hands out the table repositories of one base
type Client struct {
	Options
	client *at.Client
}

// New returns a Client for the base in option
func New(option Options) (*Client, error) {
	if err := option.validate(); err != nil {
		return nil, err
	}
	client := at.NewClient(option.APIKey)
	if option.BaseURL != "" {
		if err := client.SetBaseURL(option.BaseURL); err != nil {
			return nil, extErrors.Wrap(err, "Cannot set Airtable base URL")
		}
	}
	return &Client{
		Options: option,
		client:  client,
	}, nil
}

func (c *Client) table(name string) *at.Table {
	return c.client.GetTable(c.BaseID, name)
}

// Customers returns the customer.Repository of the base
func (c *Client) Customers() *Customers {
	return &Customers{table: c.table(CustomersTable), logger: c.Logger.With(zap.String("Table", CustomersTable))}
}

// Templates returns the template.Repository of the base
func (c *Client) Templates() *Templates {
	return &Templates{table: c.table(TemplatesTable)}
}

// Ideas returns the idea.Repository of the base
func (c *Client) Ideas() *Ideas {
	return &Ideas{table: c.table(IdeasTable)}
}

// Orders returns the order.Repository of the base
func (c *Client) Orders() *Orders {
	return &Orders{table: c.table(OrdersTable)}
}

// Ping reads at most one customer to check the credentials and the base
func (c *Client) Ping(ctx context.Context) error {
	return c.Customers().Ping(ctx)
}
