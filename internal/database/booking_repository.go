package database

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// BookingRepository handles bookings, their passengers, and the finalize /
// cancel transactions that move availability rows with them.
type BookingRepository struct {
	db        *sqlx.DB
	availRepo *AvailabilityRepository
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB, availRepo *AvailabilityRepository) *BookingRepository {
	return &BookingRepository{db: db, availRepo: availRepo}
}

const bookingColumns = `
	id, reference, user_id, schedule_id, resource_type, travel_date, status,
	base_amount, tax_amount, fee_amount, total_amount, currency,
	payment_status, payment_method, contact_name, contact_phone, contact_email,
	refund_percent, refund_amount, cancelled_at, created_at, updated_at`

const referenceCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReference produces a unique booking reference of the form
// WL-20250114-X7K2M9. Ambiguous characters (0/O, 1/I) are excluded from the
// random tail. Retries on collision, which is already vanishingly rare.
func (r *BookingRepository) GenerateReference() (string, error) {
	datePart := time.Now().Format("20060102")

	for attempt := 0; attempt < 10; attempt++ {
		tail := make([]byte, 6)
		for i := range tail {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceCharset))))
			if err != nil {
				return "", fmt.Errorf("failed to generate reference: %w", err)
			}
			tail[i] = referenceCharset[n.Int64()]
		}
		reference := fmt.Sprintf("WL-%s-%s", datePart, tail)

		var exists bool
		err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE reference = $1)`, reference)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if !exists {
			return reference, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique booking reference after 10 attempts")
}

// CreateBooking persists a booking, its passengers, the charge transaction,
// and the booked-seat transition atomically. If any held unit has lapsed or
// changed hands between validation and commit, the whole transaction rolls
// back and a conflict is returned.
func (r *BookingRepository) CreateBooking(booking *models.Booking, passengers []models.Passenger, txn *models.Transaction) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking.ID = uuid.New().String()
	_, err = tx.Exec(`
		INSERT INTO bookings (
			id, reference, user_id, schedule_id, resource_type, travel_date, status,
			base_amount, tax_amount, fee_amount, total_amount, currency,
			payment_status, payment_method, contact_name, contact_phone, contact_email,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())`,
		booking.ID, booking.Reference, booking.UserID, booking.ScheduleID,
		booking.ResourceType, booking.TravelDate, booking.Status,
		booking.BaseAmount, booking.TaxAmount, booking.FeeAmount, booking.TotalAmount,
		booking.Currency, booking.PaymentStatus, booking.PaymentMethod,
		booking.ContactName, booking.ContactPhone, booking.ContactEmail)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	unitIDs := make([]string, 0, len(passengers))
	for i := range passengers {
		passengers[i].ID = uuid.New().String()
		passengers[i].BookingID = booking.ID
		unitIDs = append(unitIDs, passengers[i].UnitID)
		_, err = tx.Exec(`
			INSERT INTO passengers (
				id, booking_id, unit_id, unit_label, full_name, age_category,
				date_of_birth, gender, document_number, amount_charged, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
			passengers[i].ID, booking.ID, passengers[i].UnitID, passengers[i].UnitLabel,
			passengers[i].FullName, passengers[i].AgeCategory, passengers[i].DateOfBirth,
			passengers[i].Gender, passengers[i].DocumentNumber, passengers[i].AmountCharged)
		if err != nil {
			return fmt.Errorf("failed to insert passenger: %w", err)
		}
	}

	// Transition the holder's live locks to booked. Anything short of the
	// full batch means a hold lapsed under us; abort.
	booked, err := r.availRepo.MarkBookedTx(tx, booking.ID, booking.UserID, booking.TravelDate, unitIDs)
	if err != nil {
		return err
	}
	if booked != len(unitIDs) {
		return &models.ConflictError{
			Message: "one or more seat holds expired before payment completed",
			Units:   unitIDs,
		}
	}

	_, err = tx.Exec(`
		UPDATE schedules SET available_units = available_units - $1, updated_at = NOW()
		WHERE id = $2`, len(unitIDs), booking.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to update schedule availability: %w", err)
	}

	txn.ID = uuid.New().String()
	txn.BookingID = booking.ID
	_, err = tx.Exec(`
		INSERT INTO transactions (id, booking_id, user_id, type, amount, currency, method, status, gateway_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		txn.ID, txn.BookingID, txn.UserID, txn.Type, txn.Amount, txn.Currency,
		txn.Method, txn.Status, txn.GatewayReference)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

// CancelBooking flips a booking to cancelled, records the refund, frees its
// availability rows, and writes the refund transaction, all atomically.
func (r *BookingRepository) CancelBooking(booking *models.Booking, refundPercent int, refundAmount float64, refundTxn *models.Transaction) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'cancelled', payment_status = 'refunded',
		    refund_percent = $1, refund_amount = $2, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status IN ('pending', 'confirmed')`,
		refundPercent, refundAmount, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &models.InvalidStateError{
			Entity:  "booking",
			Status:  string(booking.Status),
			Message: "booking is not in a cancellable state",
		}
	}

	released, err := r.availRepo.ReleaseByBookingTx(tx, booking.ID)
	if err != nil {
		return err
	}
	if released > 0 {
		_, err = tx.Exec(`
			UPDATE schedules SET available_units = available_units + $1, updated_at = NOW()
			WHERE id = $2`, released, booking.ScheduleID)
		if err != nil {
			return fmt.Errorf("failed to restore schedule availability: %w", err)
		}
	}

	if refundAmount > 0 {
		refundTxn.ID = uuid.New().String()
		refundTxn.BookingID = booking.ID
		_, err = tx.Exec(`
			INSERT INTO transactions (id, booking_id, user_id, type, amount, currency, method, status, gateway_reference, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
			refundTxn.ID, refundTxn.BookingID, refundTxn.UserID, refundTxn.Type,
			refundTxn.Amount, refundTxn.Currency, refundTxn.Method, refundTxn.Status,
			refundTxn.GatewayReference)
		if err != nil {
			return fmt.Errorf("failed to insert refund transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return nil
}

// GetByReference fetches a booking by its public reference.
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE reference = $1`, reference)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "booking", ID: reference}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetPassengers returns a booking's passenger rows in creation order.
func (r *BookingRepository) GetPassengers(bookingID string) ([]models.Passenger, error) {
	var passengers []models.Passenger
	err := r.db.Select(&passengers, `
		SELECT id, booking_id, unit_id, unit_label, full_name, age_category,
		       date_of_birth, gender, document_number, amount_charged, created_at
		FROM passengers WHERE booking_id = $1
		ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get passengers: %w", err)
	}
	return passengers, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var bookings []models.Booking
	err := r.db.Select(&bookings, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListAll returns bookings across all users for the admin dashboard,
// optionally filtered by status.
func (r *BookingRepository) ListAll(status *models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []interface{}{}
	idx := 1
	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", idx)
		args = append(args, *status)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// StatusCounts returns the number of bookings per status.
func (r *BookingRepository) StatusCounts() (map[models.BookingStatus]int, error) {
	rows, err := r.db.Queryx(`SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.BookingStatus]int)
	for rows.Next() {
		var status models.BookingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan booking counts: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// TotalRevenue returns payments taken minus refunds issued, per currency.
func (r *BookingRepository) TotalRevenue() (map[string]float64, error) {
	rows, err := r.db.Queryx(`
		SELECT currency,
		       COALESCE(SUM(CASE WHEN type = 'charge' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE status = 'succeeded'
		GROUP BY currency`)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	defer rows.Close()

	revenue := make(map[string]float64)
	for rows.Next() {
		var currency string
		var amount float64
		if err := rows.Scan(&currency, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		revenue[currency] = amount
	}
	return revenue, rows.Err()
}

// CompleteDepartedBefore flips confirmed bookings whose travel date has
// passed to completed. Returns how many were flipped.
func (r *BookingRepository) CompleteDepartedBefore(now time.Time) (int, error) {
	result, err := r.db.Exec(`
		UPDATE bookings SET status = 'completed', updated_at = NOW()
		WHERE status = 'confirmed' AND travel_date < $1`, now.Truncate(24*time.Hour))
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
