package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// Consumer turns booking lifecycle events into user notification rows. It
// runs in its own goroutine with a reconnect loop; poison messages are
// rejected without requeue so one bad payload cannot wedge the queue.
type Consumer struct {
	url       string
	notifRepo *database.NotificationRepository
	logger    *logrus.Logger
}

// NewConsumer creates a new Consumer
func NewConsumer(url string, notifRepo *database.NotificationRepository, logger *logrus.Logger) *Consumer {
	return &Consumer{url: url, notifRepo: notifRepo, logger: logger}
}

// Run connects and consumes until stop is closed. Dial failures back off
// exponentially up to 30 seconds.
func (c *Consumer) Run(stop <-chan struct{}) {
	backoff := time.Second
	for {
		select {
		case <-stop:
			return
		default:
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.WithError(err).Warnf("Booking consumer: dial failed, retrying in %s", backoff)
			select {
			case <-stop:
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consume(conn, stop); err != nil {
			c.logger.WithError(err).Warn("Booking consumer: consume loop ended, reconnecting")
		}
		conn.Close()

		select {
		case <-stop:
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(conn *amqp.Connection, stop <-chan struct{}) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.WithError(err).Warn("Booking consumer: set QoS failed")
	}

	for _, queueName := range []string{BookingConfirmedQueue, BookingCancelledQueue} {
		if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", queueName, err)
		}
	}

	confirmed, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", BookingConfirmedQueue, err)
	}
	cancelled, err := ch.Consume(BookingCancelledQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", BookingCancelledQueue, err)
	}

	for {
		select {
		case <-stop:
			return nil
		case d, ok := <-confirmed:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(d, c.handleConfirmed)
		case d, ok := <-cancelled:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(d, c.handleCancelled)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery, fn func([]byte) error) {
	if err := fn(d.Body); err != nil {
		c.logger.WithError(err).Warn("Booking consumer: message rejected")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) handleConfirmed(body []byte) error {
	var event BookingConfirmedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal confirmed event: %w", err)
	}
	return c.notifRepo.Create(&models.Notification{
		UserID:    event.UserID,
		Kind:      models.NotificationKindBookingConfirmed,
		Title:     "Booking confirmed",
		Body: fmt.Sprintf("Your %s booking %s for %s is confirmed. Total %.2f %s.",
			event.ResourceType, event.Reference, event.TravelDate, event.TotalAmount, event.Currency),
		Reference: &event.Reference,
	})
}

func (c *Consumer) handleCancelled(body []byte) error {
	var event BookingCancelledEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal cancelled event: %w", err)
	}
	return c.notifRepo.Create(&models.Notification{
		UserID:    event.UserID,
		Kind:      models.NotificationKindBookingCancelled,
		Title:     "Booking cancelled",
		Body: fmt.Sprintf("Booking %s was cancelled. Refund: %d%% (%.2f %s).",
			event.Reference, event.RefundPercent, event.RefundAmount, event.Currency),
		Reference: &event.Reference,
	})
}
