package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MyFinance/config"
	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends committed ledger events to a topic exchange, routed by event name.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	timeout  time.Duration
}

var _ transaction.EventPublisher = (*AMQPPublisher)(nil)

func NewAMQPPublisher(cfg config.BrokerConfig) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	publisher, err := newAMQPPublisher(channel, cfg.Exchange)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	publisher.conn = conn

	logger.Info().Str("exchange", cfg.Exchange).Msg("Ledger event publisher connected")
	return publisher, nil
}

func newAMQPPublisher(channel amqpChannel, exchange string) (*AMQPPublisher, error) {
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		timeout:  5 * time.Second,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event transaction.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, event.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		MessageId:    event.TransactionID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Name, err)
	}

	logger.Debug().
		Str("event", event.Name).
		Str("transaction_id", event.TransactionID).
		Str("exchange", p.exchange).
		Msg("Ledger event published")
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
