package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind categorizes user notifications.
type NotificationKind string

const (
	NotificationKindBookingConfirmed NotificationKind = "booking_confirmed"
	NotificationKindBookingCancelled NotificationKind = "booking_cancelled"
	NotificationKindKYCDecision      NotificationKind = "kyc_decision"
	NotificationKindSystem           NotificationKind = "system"
)

// Notification is a per-user message row. Rows are written by the AMQP
// consumer for booking lifecycle events and directly for KYC decisions.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Reference *string          `json:"reference,omitempty" db:"reference"` // booking reference, if any
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
