package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// TransactionRepository provides read access to payment movements. Writes
// happen inside the booking transactions so money and seats move together.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, booking_id, user_id, type, amount, currency, method, status, gateway_reference, created_at`

// ListByUser returns a user's payment history, newest first.
func (r *TransactionRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var txns []models.Transaction
	err := r.db.Select(&txns, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// ListByBooking returns the movements attached to one booking.
func (r *TransactionRepository) ListByBooking(bookingID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.Select(&txns, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE booking_id = $1
		ORDER BY created_at ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking transactions: %w", err)
	}
	return txns, nil
}
