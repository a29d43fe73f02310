package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher pushes booking lifecycle events to RabbitMQ. Publishing is
// best-effort: callers log and ignore errors so a broker outage never fails
// a committed booking.
type Publisher struct {
	url    string
	logger *logrus.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(url string, logger *logrus.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// PublishBookingConfirmed publishes to the booking.confirmed queue.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	return p.publish(ctx, BookingConfirmedQueue, event)
}

// PublishBookingCancelled publishes to the booking.cancelled queue.
func (p *Publisher) PublishBookingCancelled(ctx context.Context, event BookingCancelledEvent) error {
	return p.publish(ctx, BookingCancelledQueue, event)
}

// publish dials per call. Event volume is low enough that connection churn
// is preferable to managing a shared channel's failure modes.
func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.WithError(err).Warn("Event publish: broker dial failed")
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.WithError(err).Warn("Event publish: channel open failed")
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	// Durable queue, declared idempotently so publisher and consumer can
	// start in any order.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.WithError(err).WithField("queue", queueName).Warn("Event publish failed")
		return fmt.Errorf("amqp publish: %w", err)
	}

	p.logger.WithField("queue", queueName).Debug("Event published")
	return nil
}
