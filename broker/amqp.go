package broker

import (
	"context"
	"encoding/json"
	"fmt"

	extErrors "github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var _ Publisher = &AMQPPublisher{}

// DefaultExchange receives every customer notification
const DefaultExchange = "unaique.customers"

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPOptions contains the configuration for AMQPPublisher
type AMQPOptions struct {
	URI      string
	Exchange string
	Logger   *zap.Logger
}

func (o *AMQPOptions) validate() error {
	if o == nil {
		return fmt.Errorf("nil option is invalid")
	}
	if o.URI == "" {
		return fmt.Errorf("Empty URI is invalid")
	}
	if o.Logger == nil {
		return fmt.Errorf("nil Logger is invalid")
	}
	if o.Exchange == "" {
		o.Exchange = DefaultExchange
	}
	return nil
}

// AMQPPublisher publishes notifications to a RabbitMQ topic exchange, routed by event name
type AMQPPublisher struct {
	exchange   string
	logger     *zap.Logger
	connection *amqp.Connection
	channel    channel
}

// NewAMQPPublisher returns a Publisher over RabbitMQ
func NewAMQPPublisher(option AMQPOptions) (*AMQPPublisher, error) {
	if err := option.validate(); err != nil {
		return nil, err
	}
	amqpConn, err := amqp.Dial(option.URI)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot connect to Message Broker")
	}
	amqpChan, err := amqpConn.Channel()
	if err != nil {
		amqpConn.Close()
		return nil, extErrors.Wrap(err, "Cannot create broker channel")
	}
	p, err := newAMQPPublisher(amqpChan, option.Exchange, option.Logger)
	if err != nil {
		amqpConn.Close()
		return nil, err
	}
	p.connection = amqpConn
	return p, nil
}

func newAMQPPublisher(ch channel, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		exchange: exchange,
		logger:   logger,
		channel:  ch,
	}
	if err := p.setupExchange(); err != nil {
		return nil, extErrors.Wrap(err, "Cannot declare exchange for customer notifications")
	}
	return p, nil
}

func (a *AMQPPublisher) setupExchange() error {
	return a.channel.ExchangeDeclare(
		a.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
}

// Publish encodes e as JSON and routes it by e.Name
func (a *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return extErrors.Wrap(err, "Cannot encode event into bytes")
	}
	if err := a.channel.Publish(
		a.exchange,
		e.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Type:         e.Name,
			Body:         body,
		},
	); err != nil {
		return extErrors.Wrap(err, "Cannot publish event")
	}
	a.logger.Debug("Event published",
		zap.String("Event", e.Name),
	)
	return nil
}

// Close will close the channel and connection to release resources
func (a *AMQPPublisher) Close() {
	a.channel.Close()
	if a.connection != nil {
		a.connection.Close()
	}
}
