package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

type publisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	mu           sync.Mutex
}

// NewPublisher dials amqpURL and declares exchangeName as a durable topic exchange.
func NewPublisher(amqpURL, exchangeName string) (Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}

	return &publisher{conn: conn, channel: ch, exchangeName: exchangeName}, nil
}

// NewPublisherOrNoop returns a live publisher, or a no-op one when amqpURL is
// empty or the broker cannot be reached. Events are best effort.
func NewPublisherOrNoop(amqpURL, exchangeName string, logger *slog.Logger) Publisher {
	if amqpURL == "" {
		logger.Warn("AMQP_URL not set; publishing disabled", "exchange", exchangeName)
		return NewNoopPublisher(logger)
	}
	pub, err := NewPublisher(amqpURL, exchangeName)
	if err != nil {
		logger.Warn("failed to initialize RabbitMQ publisher", "exchange", exchangeName, "error", err)
		return NewNoopPublisher(logger)
	}
	return pub
}

type noopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher returns a publisher that drops events.
func NewNoopPublisher(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &noopPublisher{logger: logger}
}

func (n *noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	n.logger.DebugContext(ctx, "RabbitMQ not configured; skipping publish", "routing_key", routingKey)
	return nil
}

func (n *noopPublisher) Close() error { return nil }

func (p *publisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return amqp.ErrClosed
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(ctx,
		p.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (p *publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}
