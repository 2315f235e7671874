// Package broker forwards committed pipeline events to RabbitMQ.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "topic"

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher writes events to a topic exchange with the event name as routing key.
type Publisher struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
	log      *logger.Logger
}

// Dial connects to RabbitMQ and declares the exchange.
func Dial(url, exchange string, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewPublisher(ch, exchange, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchange on an open channel.
func NewPublisher(ch Channel, exchange string, log *logger.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, log: log}, nil
}

// Publish sends one event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		event.EventName(),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.EventName(),
			Timestamp:    event.OccurredAt(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

// Subscribe forwards every pipeline event published on bus.
func (p *Publisher) Subscribe(bus events.Bus) {
	for _, name := range events.AllNames {
		bus.Subscribe(name, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			if err := p.Publish(ctx, event); err != nil {
				return err
			}
			p.log.Debug("event forwarded", "event", event.EventName(), "exchange", p.exchange)
			return nil
		}))
	}
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
