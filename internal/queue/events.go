package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultEventsExchange is the fanout exchange for domain events
	DefaultEventsExchange = "notehub_events"

	// EventNoteCreated is published after a note is created
	EventNoteCreated = "note_created"
	// EventNoteUpdated is published after a note mutation
	EventNoteUpdated = "note_updated"
	// EventNoteDeleted is published after a note is trashed or removed
	EventNoteDeleted = "note_deleted"
	// EventMessageSent is published after a chat message is stored
	EventMessageSent = "message_sent"
)

// RabbitMQPublisher broadcasts domain events on a fanout exchange.
// Publication is fire-and-forget: failures are logged and swallowed, never
// surfaced to the request that triggered them.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewRabbitMQPublisher creates an event publisher on its own connection
func NewRabbitMQPublisher(amqpURL string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		DefaultEventsExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare events exchange: %w", err)
	}

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: DefaultEventsExchange,
		logger:   logger,
	}, nil
}

// Publish broadcasts one event. Errors are logged and returned, but callers
// are expected to ignore them.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"event":     event,
		"payload":   payload,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("failed_to_marshal_event", zap.String("event", event), zap.Error(err))
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		"", // fanout ignores routing keys
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Warn("failed_to_publish_event", zap.String("event", event), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the publisher connection
func (p *RabbitMQPublisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if closeErr := p.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// NoopPublisher drops all events. Used when no broker is configured.
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Close is a no-op
func (NoopPublisher) Close() error { return nil }

var (
	_ EventPublisher = (*RabbitMQPublisher)(nil)
	_ EventPublisher = NoopPublisher{}
)
