package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/zllovesuki/unaique/customer"
	"github.com/zllovesuki/unaique/order"
	"github.com/zllovesuki/unaique/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomersFindByEmail(t *testing.T) {
	ctx := context.Background()
	c := NewCustomers()

	got, err := c.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	created, err := c.Create(ctx, &customer.Customer{Email: "a@x.com", Name: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.RecordID)

	got, err = c.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = c.Create(ctx, &customer.Customer{Email: "a@x.com", Name: "A again"})
	require.NoError(t, err)

	_, err = c.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, customer.ErrDuplicateEmail)
}

func TestCustomersUpdate(t *testing.T) {
	ctx := context.Background()
	c := NewCustomers()

	created, err := c.Create(ctx, &customer.Customer{Email: "a@x.com", Name: "A", Phone: "+1"})
	require.NoError(t, err)

	name := "B"
	updated, err := c.Update(ctx, created.RecordID, customer.Changes{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "+1", updated.Phone)

	byPhone, err := c.FindByPhone(ctx, " +1 ")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, "B", byPhone.Name)

	_, err = c.Update(ctx, "missing", customer.Changes{Name: &name})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTemplatesBatchLimit(t *testing.T) {
	ctx := context.Background()
	s := NewTemplates()

	_, err := s.Add(ctx, make([]template.Template, template.BatchSize+1))
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	added, err := s.Add(ctx, []template.Template{{Name: "one"}, {Name: "two"}})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotEqual(t, added[0].RecordID, added[1].RecordID)

	updated, err := s.SetLikes(ctx, added[1].RecordID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Likes)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", list[0].Name)
	assert.Equal(t, 3, list[1].Likes)
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()

	first, err := s.First(ctx)
	require.NoError(t, err)
	assert.Nil(t, first)

	a, err := s.Create(ctx, &order.Order{CustomerID: "biz-1", Status: order.StatusCreating})
	require.NoError(t, err)
	_, err = s.Create(ctx, &order.Order{CustomerID: "biz-2", Status: order.StatusCreating})
	require.NoError(t, err)
	assert.Equal(t, "1", a.OrderNumber)

	list, err := s.ListByCustomer(ctx, "biz-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cancelled, err := s.UpdateStatus(ctx, "1", order.StatusCancelled, when)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, when, *cancelled.DeliveryDate)

	_, err = s.UpdateStatus(ctx, "99", order.StatusCancelled, when)
	assert.ErrorIs(t, err, order.ErrNotFound)
}
