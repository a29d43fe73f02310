package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// AvailabilityRepository handles the per-(unit, date) availability ledger.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// lockUpsertQuery places or refreshes a hold on one (unit, date) row. The
// WHERE clause on the conflict arm is what makes concurrent lockers safe:
// a row that is booked, blocked, or live-locked by someone else is simply
// not updated, and the caller sees zero rows affected.
const lockUpsertQuery = `
	INSERT INTO availability_records (
		id, unit_id, schedule_id, travel_date, status, holder_id, lock_expires_at, created_at, updated_at
	) VALUES ($1, $2, $3, $4, 'locked', $5, $6, NOW(), NOW())
	ON CONFLICT (unit_id, travel_date) DO UPDATE
	SET status = 'locked',
	    holder_id = EXCLUDED.holder_id,
	    lock_expires_at = EXCLUDED.lock_expires_at,
	    booking_id = NULL,
	    updated_at = NOW()
	WHERE availability_records.status = 'available'
	   OR (availability_records.status = 'locked'
	       AND (availability_records.holder_id = EXCLUDED.holder_id
	            OR availability_records.lock_expires_at <= NOW()))`

// LockUnits places a hold on every unit in the batch, or on none of them.
// The whole batch runs in one transaction; the first unit that cannot be
// locked aborts and rolls back everything already locked in this call.
// Re-locking by the same holder refreshes the expiry; expired foreign locks
// are overwritten.
func (r *AvailabilityRepository) LockUnits(
	holderID uuid.UUID,
	scheduleID string,
	travelDate time.Time,
	unitIDs []string,
	expiresAt time.Time,
) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, unitID := range unitIDs {
		result, err := tx.Exec(lockUpsertQuery,
			uuid.New().String(), unitID, scheduleID, travelDate, holderID, expiresAt,
		)
		if err != nil {
			return fmt.Errorf("failed to lock unit %s: %w", unitID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			// Rolled back by the deferred Rollback; report why the unit
			// could not be held.
			return r.conflictFor(unitID, travelDate)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lock batch: %w", err)
	}
	return nil
}

// conflictFor inspects the blocking row to produce a specific conflict
// message for the caller.
func (r *AvailabilityRepository) conflictFor(unitID string, travelDate time.Time) error {
	var status string
	err := r.db.Get(&status, `
		SELECT status FROM availability_records
		WHERE unit_id = $1 AND travel_date = $2`, unitID, travelDate)
	if err != nil {
		status = string(models.AvailabilityStatusLocked)
	}
	switch models.AvailabilityStatus(status) {
	case models.AvailabilityStatusBooked:
		return &models.ConflictError{Message: "seat already booked", Units: []string{unitID}}
	case models.AvailabilityStatusBlocked:
		return &models.ConflictError{Message: "seat is blocked", Units: []string{unitID}}
	default:
		return &models.ConflictError{Message: "seat temporarily unavailable", Units: []string{unitID}}
	}
}

// GetRecords returns the ledger rows for the given units on a date. Units
// without a row are simply absent from the result (no row means available).
func (r *AvailabilityRepository) GetRecords(scheduleID string, travelDate time.Time, unitIDs []string) ([]models.AvailabilityRecord, error) {
	if len(unitIDs) == 0 {
		return []models.AvailabilityRecord{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, unit_id, schedule_id, travel_date, status, holder_id, lock_expires_at,
		       booking_id, created_at, updated_at
		FROM availability_records
		WHERE schedule_id = ? AND travel_date = ? AND unit_id IN (?)`,
		scheduleID, travelDate, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build records query: %w", err)
	}
	query = r.db.Rebind(query)

	var records []models.AvailabilityRecord
	if err := r.db.Select(&records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByBookingID returns the ledger rows attached to a booking.
func (r *AvailabilityRepository) GetByBookingID(bookingID string) ([]models.AvailabilityRecord, error) {
	var records []models.AvailabilityRecord
	err := r.db.Select(&records, `
		SELECT id, unit_id, schedule_id, travel_date, status, holder_id, lock_expires_at,
		       booking_id, created_at, updated_at
		FROM availability_records
		WHERE booking_id = $1`, bookingID)
	return records, err
}

// MarkBookedTx transitions the holder's live locks to booked within an
// existing transaction, attaching the booking reference and clearing the
// hold fields. Returns the number of transitioned rows; the caller must
// verify it equals the batch size and roll back otherwise.
func (r *AvailabilityRepository) MarkBookedTx(
	tx *sqlx.Tx,
	bookingID string,
	holderID uuid.UUID,
	travelDate time.Time,
	unitIDs []string,
) (int, error) {
	query, args, err := sqlx.In(`
		UPDATE availability_records
		SET status = 'booked', booking_id = ?, holder_id = NULL, lock_expires_at = NULL, updated_at = NOW()
		WHERE unit_id IN (?) AND travel_date = ?
		  AND status = 'locked' AND holder_id = ? AND lock_expires_at > NOW()`,
		bookingID, unitIDs, travelDate, holderID)
	if err != nil {
		return 0, fmt.Errorf("failed to build book query: %w", err)
	}
	query = tx.Rebind(query)

	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark units booked: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// ReleaseByBookingTx resets a cancelled booking's rows to available within
// an existing transaction and returns how many were released.
func (r *AvailabilityRepository) ReleaseByBookingTx(tx *sqlx.Tx, bookingID string) (int, error) {
	result, err := tx.Exec(`
		UPDATE availability_records
		SET status = 'available', booking_id = NULL, holder_id = NULL, lock_expires_at = NULL, updated_at = NOW()
		WHERE booking_id = $1 AND status = 'booked'`, bookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to release booking units: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// ReleaseLocksForHolder drops a requester's live locks on a schedule/date,
// used when the client abandons a selection explicitly.
func (r *AvailabilityRepository) ReleaseLocksForHolder(holderID uuid.UUID, scheduleID string, travelDate time.Time) (int, error) {
	result, err := r.db.Exec(`
		UPDATE availability_records
		SET status = 'available', holder_id = NULL, lock_expires_at = NULL, updated_at = NOW()
		WHERE holder_id = $1 AND schedule_id = $2 AND travel_date = $3 AND status = 'locked'`,
		holderID, scheduleID, travelDate)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// SweepExpiredLocks resets rows whose lock expiry has long passed.
// Correctness never depends on this: readers resolve expiry lazily through
// EffectiveStatus. This is row hygiene for the housekeeping job.
func (r *AvailabilityRepository) SweepExpiredLocks(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.Exec(`
		UPDATE availability_records
		SET status = 'available', holder_id = NULL, lock_expires_at = NULL, updated_at = NOW()
		WHERE status = 'locked' AND lock_expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// CountActiveForSchedule returns how many units are effectively not
// available for a schedule/date (booked, blocked, or live-locked).
func (r *AvailabilityRepository) CountActiveForSchedule(scheduleID string, travelDate time.Time) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM availability_records
		WHERE schedule_id = $1 AND travel_date = $2
		  AND (status IN ('booked', 'blocked')
		       OR (status = 'locked' AND lock_expires_at > NOW()))`,
		scheduleID, travelDate)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}
