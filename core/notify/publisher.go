package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends JSON messages to a topic exchange.
type Publisher struct {
	channel  Channel
	exchange string
	logger   *zap.Logger
	now      func() time.Time
}

// NewPublisher creates a publisher bound to exchange.
func NewPublisher(channel Channel, exchange string, logger *zap.Logger) *Publisher {
	return &Publisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger,
		now:      time.Now,
	}
}

// DeclareTopology declares the durable topic exchange.
func (p *Publisher) DeclareTopology() error {
	err := p.channel.ExchangeDeclare(
		p.exchange,
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", p.exchange, err)
	}

	p.logger.Debug("Exchange declared", zap.String("exchange", p.exchange))
	return nil
}

// Publish publishes message as JSON with routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to exchange '%s' with routing key '%s': %w", p.exchange, routingKey, err)
	}

	p.logger.Debug("Message published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
	)
	return nil
}
