// Package memstore keeps every table in process memory. It is used for local runs
// without a record store and as the store in tests.
package memstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/zllovesuki/unaique/customer"
	"github.com/zllovesuki/unaique/idea"
	"github.com/zllovesuki/unaique/order"
	"github.com/zllovesuki/unaique/template"
)

var (
	_ customer.Repository = &Customers{}
	_ template.Repository = &Templates{}
	_ idea.Repository     = &Ideas{}
	_ order.Repository    = &Orders{}
)

// Store holds one of each table
type Store struct {
	Customers *Customers
	Templates *Templates
	Ideas     *Ideas
	Orders    *Orders
}

// New returns an empty Store
func New() *Store {
	return &Store{
		Customers: NewCustomers(),
		Templates: NewTemplates(),
		Ideas:     NewIdeas(),
		Orders:    NewOrders(),
	}
}

// Customers is an in-memory customer.Repository. Like the hosted store it does not
// enforce unique emails, so duplicates can be created on purpose.
type Customers struct {
	t *table[customer.Customer]
}

// NewCustomers returns an empty customer table
func NewCustomers() *Customers {
	return &Customers{t: newTable[customer.Customer]("rec")}
}

func (c *Customers) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	matches := c.t.filter(func(row customer.Customer) bool {
		return row.Email == email
	}, 2)
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, customer.ErrDuplicateEmail
	}
}

func (c *Customers) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	phone = strings.TrimSpace(phone)
	matches := c.t.filter(func(row customer.Customer) bool {
		return row.Phone == phone
	}, 1)
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (c *Customers) Create(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	row := *cust
	row.RecordID = c.t.nextID()
	c.t.insert(row.RecordID, row)
	return &row, nil
}

func (c *Customers) Update(ctx context.Context, recordID string, changes customer.Changes) (*customer.Customer, error) {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	row, ok := c.t.rows[recordID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	changes.Apply(&row)
	c.t.rows[recordID] = row
	return &row, nil
}

func (c *Customers) Ping(ctx context.Context) error {
	return nil
}

// All returns every customer in insertion order
func (c *Customers) All() []customer.Customer {
	return c.t.filter(nil, 0)
}

// Templates is an in-memory template.Repository
type Templates struct {
	t *table[template.Template]
}

// NewTemplates returns an empty template table
func NewTemplates() *Templates {
	return &Templates{t: newTable[template.Template]("rec")}
}

func (s *Templates) List(ctx context.Context) ([]template.Template, error) {
	return s.t.filter(nil, 0), nil
}

func (s *Templates) Get(ctx context.Context, id string) (*template.Template, error) {
	row, ok := s.t.get(id)
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *Templates) Add(ctx context.Context, templates []template.Template) ([]template.Template, error) {
	if len(templates) > template.BatchSize {
		return nil, ErrBatchTooLarge
	}
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	added := make([]template.Template, 0, len(templates))
	for _, tmpl := range templates {
		tmpl.RecordID = s.t.nextID()
		s.t.insert(tmpl.RecordID, tmpl)
		added = append(added, tmpl)
	}
	return added, nil
}

func (s *Templates) SetLikes(ctx context.Context, id string, likes int) (*template.Template, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	row, ok := s.t.rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	row.Likes = likes
	s.t.rows[id] = row
	return &row, nil
}

// Ideas is an in-memory idea.Repository. ID is an auto number like the hosted column.
type Ideas struct {
	t *table[idea.Idea]
}

// NewIdeas returns an empty content idea table
func NewIdeas() *Ideas {
	return &Ideas{t: newTable[idea.Idea]("rec")}
}

func (s *Ideas) Create(ctx context.Context, i *idea.Idea) (*idea.Idea, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	row := *i
	row.RecordID = s.t.nextID()
	row.ID = strconv.FormatUint(s.t.counter, 10)
	s.t.insert(row.RecordID, row)
	return &row, nil
}

// All returns every idea in insertion order
func (s *Ideas) All() []idea.Idea {
	return s.t.filter(nil, 0)
}

// Orders is an in-memory order.Repository. OrderNumber is an auto number like the
// hosted column.
type Orders struct {
	t *table[order.Order]
}

// NewOrders returns an empty order table
func NewOrders() *Orders {
	return &Orders{t: newTable[order.Order]("rec")}
}

func (s *Orders) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	row := *o
	row.RecordID = s.t.nextID()
	row.OrderNumber = strconv.FormatUint(s.t.counter, 10)
	s.t.insert(row.RecordID, row)
	return &row, nil
}

func (s *Orders) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	return s.t.filter(func(row order.Order) bool {
		return row.CustomerID == customerID
	}, 0), nil
}

func (s *Orders) UpdateStatus(ctx context.Context, orderNumber string, status order.Status, deliveryDate time.Time) (*order.Order, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	for _, id := range s.t.order {
		row := s.t.rows[id]
		if row.OrderNumber != orderNumber {
			continue
		}
		row.Status = status
		row.DeliveryDate = &deliveryDate
		s.t.rows[id] = row
		return &row, nil
	}
	return nil, order.ErrNotFound
}

func (s *Orders) First(ctx context.Context) (*order.Order, error) {
	rows := s.t.filter(nil, 1)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
