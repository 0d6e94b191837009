package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	kinds      []string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name)
	f.kinds = append(f.kinds, kind)
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishRoutesByEventName(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, DefaultExchange, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultExchange}, ch.declared)
	assert.Equal(t, []string{"topic"}, ch.kinds)

	e := NewEvent(EventIdentityDeleted, map[string]string{"clerkId": "user_1"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, EventIdentityDeleted, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, EventIdentityDeleted, decoded["event"])
	assert.Equal(t, float64(1), decoded["version"])
	assert.Equal(t, "user_1", decoded["data"].(map[string]interface{})["clerkId"])

	p.Close()
	assert.True(t, ch.closed)
}

func TestPublishErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newAMQPPublisher(ch, DefaultExchange, zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, p.Publish(context.Background(), NewEvent(EventCustomerCreated, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, NewEvent(EventCustomerCreated, nil)), context.Canceled)
}

func TestAMQPOptionsValidate(t *testing.T) {
	_, err := NewAMQPPublisher(AMQPOptions{Logger: zap.NewNop()})
	assert.Error(t, err)

	o := AMQPOptions{URI: "amqp://localhost", Logger: zap.NewNop()}
	require.NoError(t, o.validate())
	assert.Equal(t, DefaultExchange, o.Exchange)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(EventCustomerUpdated, nil)))
	p.Close()
}
