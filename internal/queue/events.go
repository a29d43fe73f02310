package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names. Both are durable; messages are persistent.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published after a booking commits.
type BookingConfirmedEvent struct {
	Reference    string    `json:"reference"`
	UserID       uuid.UUID `json:"user_id"`
	ScheduleID   string    `json:"schedule_id"`
	ResourceType string    `json:"resource_type"`
	TravelDate   string    `json:"travel_date"`
	Passengers   int       `json:"passengers"`
	TotalAmount  float64   `json:"total_amount"`
	Currency     string    `json:"currency"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	Reference     string    `json:"reference"`
	UserID        uuid.UUID `json:"user_id"`
	ResourceType  string    `json:"resource_type"`
	RefundPercent int       `json:"refund_percent"`
	RefundAmount  float64   `json:"refund_amount"`
	Currency      string    `json:"currency"`
	CancelledAt   time.Time `json:"cancelled_at"`
}
