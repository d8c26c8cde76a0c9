package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// ErrNotConnected is returned while the client has no open channel.
var ErrNotConnected = errors.New("AMQP client is not connected")

// brokerChannel is the channel surface the client owns.
type brokerChannel interface {
	Channel
	Close() error
}

// Client manages the RabbitMQ connection and channel. A connection lost to a
// broker error is re-dialed with exponential backoff until Close is called.
// Client implements Channel against whichever channel is current, so a
// Publisher built over it survives reconnects.
type Client struct {
	conn    *amqp.Connection
	channel brokerChannel
	mu      sync.RWMutex
	url     string
	logger  *zap.Logger

	done       chan struct{}
	closeOnce  sync.Once
	retryDelay time.Duration
	connectFn  func() error
}

var _ Channel = (*Client)(nil)

// NewClient dials the broker and opens a channel.
func NewClient(url string, logger *zap.Logger) (*Client, error) {
	client := newClient(url, logger)

	if err := client.connect(); err != nil {
		return nil, fmt.Errorf("failed to create AMQP client: %w", err)
	}

	return client, nil
}

func newClient(url string, logger *zap.Logger) *Client {
	c := &Client{
		url:        url,
		logger:     logger,
		done:       make(chan struct{}),
		retryDelay: defaultRetryDelay,
	}
	c.connectFn = c.connect
	return c
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	go c.handleConnectionClose(conn)

	c.logger.Info("AMQP client connected")
	return nil
}

func (c *Client) handleConnectionClose(conn *amqp.Connection) {
	closeErr := conn.NotifyClose(make(chan *amqp.Error, 1))
	err, ok := <-closeErr
	if !ok || err == nil {
		// Closed by Close.
		return
	}

	c.logger.Error("AMQP connection closed", zap.String("reason", err.Reason), zap.Int("code", err.Code))

	c.mu.Lock()
	c.conn = nil
	c.channel = nil
	c.mu.Unlock()

	c.reconnect()
}

// reconnect retries connectFn until it succeeds or the client is closed.
func (c *Client) reconnect() {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}

		err := c.connectFn()
		if err == nil {
			c.logger.Info("AMQP client reconnected", zap.Int("attempt", attempt))
			return
		}

		c.logger.Warn("AMQP reconnect failed", zap.Int("attempt", attempt), zap.Duration("retry_in", delay), zap.Error(err))
		delay = min(delay*2, maxRetryDelay)
	}
}

// Channel returns the current channel, or nil while disconnected.
func (c *Client) Channel() Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.channel == nil {
		return nil
	}
	return c.channel
}

// ExchangeDeclare declares an exchange on the current channel.
func (c *Client) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	ch := c.Channel()
	if ch == nil {
		return ErrNotConnected
	}
	return ch.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

// PublishWithContext publishes on the current channel.
func (c *Client) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	ch := c.Channel()
	if ch == nil {
		return ErrNotConnected
	}
	return ch.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Close stops reconnecting and closes the channel and connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.logger.Info("AMQP client closed")
	return nil
}
