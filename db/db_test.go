package db

import (
	"context"
	"testing"
	"time"

	"github.com/zllovesuki/unaique/customer"
	"github.com/zllovesuki/unaique/idea"
	"github.com/zllovesuki/unaique/order"
	"github.com/zllovesuki/unaique/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := New(Options{
		Logger:    zaptest.NewLogger(t),
		Dialector: sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if pool, err := db.DB(); err == nil {
			pool.Close()
		}
	})
	return db
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestCustomersCreateAndFind(t *testing.T) {
	repo := NewCustomers(newDB(t))
	ctx := context.Background()

	missing, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Create(ctx, &customer.Customer{Name: "Kim", Email: "a@x.com", Phone: "+82101"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.RecordID)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.RecordID, found.RecordID)

	byPhone, err := repo.FindByPhone(ctx, " +82101 ")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, created.RecordID, byPhone.RecordID)

	assert.NoError(t, repo.Ping(ctx))
}

func TestCustomersCreateUpsertsOnEmail(t *testing.T) {
	repo := NewCustomers(newDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, &customer.Customer{Name: "Kim", Email: "a@x.com"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &customer.Customer{Name: "Lee", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, first.RecordID, second.RecordID)
	assert.Equal(t, "Kim", second.Name)
}

func TestCustomersUpdate(t *testing.T) {
	repo := NewCustomers(newDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &customer.Customer{Name: "Kim", Email: "a@x.com", Phone: "+1"})
	require.NoError(t, err)

	phone := "+2"
	updated, err := repo.Update(ctx, created.RecordID, customer.Changes{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "+2", updated.Phone)
	assert.Equal(t, "Kim", updated.Name)

	_, err = repo.Update(ctx, "missing", customer.Changes{Phone: &phone})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTemplates(t *testing.T) {
	repo := NewTemplates(newDB(t))
	ctx := context.Background()

	defaults, err := template.Defaults()
	require.NoError(t, err)

	_, err = repo.Add(ctx, defaults)
	assert.Error(t, err, "more than one batch")

	added, err := repo.Add(ctx, defaults[:template.BatchSize])
	require.NoError(t, err)
	require.Len(t, added, template.BatchSize)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, template.BatchSize)
	assert.Equal(t, defaults[0].Name, list[0].Name)

	liked, err := repo.SetLikes(ctx, added[2].RecordID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, liked.Likes)

	missing, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.SetLikes(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestIdeas(t *testing.T) {
	repo := NewIdeas(newDB(t))

	first, err := repo.Create(context.Background(), &idea.Idea{CustomerID: "biz", Idea: "i", Automation: idea.AutomationStart})
	require.NoError(t, err)
	second, err := repo.Create(context.Background(), &idea.Idea{CustomerID: "biz", Idea: "j"})
	require.NoError(t, err)

	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, idea.AutomationStart, first.Automation)
}

func TestOrders(t *testing.T) {
	repo := NewOrders(newDB(t))
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	empty, err := repo.First(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	created, err := repo.Create(ctx, &order.Order{CustomerID: "biz", Status: order.StatusCreating, OrderDate: now})
	require.NoError(t, err)
	assert.Equal(t, "1", created.OrderNumber)
	_, err = repo.Create(ctx, &order.Order{CustomerID: "other", Status: order.StatusCreating, OrderDate: now})
	require.NoError(t, err)

	list, err := repo.ListByCustomer(ctx, "biz")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, now.Equal(list[0].OrderDate))

	cancelled, err := repo.UpdateStatus(ctx, "1", order.StatusCancelled, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.DeliveryDate)
	assert.True(t, now.Add(time.Hour).Equal(*cancelled.DeliveryDate))

	_, err = repo.UpdateStatus(ctx, "99", order.StatusCancelled, now)
	assert.ErrorIs(t, err, order.ErrNotFound)
	_, err = repo.UpdateStatus(ctx, "abc", order.StatusCancelled, now)
	assert.ErrorIs(t, err, order.ErrNotFound)

	head, err := repo.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", head.OrderNumber)
}
