package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes charges from refunds.
type TransactionType string

const (
	TransactionTypeCharge TransactionType = "charge"
	TransactionTypeRefund TransactionType = "refund"
)

// TransactionStatus is the gateway outcome. The gateway is mocked and always
// succeeds; failed exists for completeness of the enum.
type TransactionStatus string

const (
	TransactionStatusSucceeded TransactionStatus = "succeeded"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is one mock payment gateway movement tied to a booking.
type Transaction struct {
	ID               string            `json:"id" db:"id"`
	BookingID        string            `json:"booking_id" db:"booking_id"`
	UserID           uuid.UUID         `json:"user_id" db:"user_id"`
	Type             TransactionType   `json:"type" db:"type"`
	Amount           float64           `json:"amount" db:"amount"`
	Currency         string            `json:"currency" db:"currency"`
	Method           string            `json:"method" db:"method"` // card, upi, wallet
	Status           TransactionStatus `json:"status" db:"status"`
	GatewayReference string            `json:"gateway_reference" db:"gateway_reference"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}
