package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// KYCRepository handles identity verification submissions.
type KYCRepository struct {
	db *sqlx.DB
}

// NewKYCRepository creates a new KYCRepository
func NewKYCRepository(db *sqlx.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

const kycColumns = `
	id, user_id, full_name, date_of_birth, gender, nationality, id_type,
	id_number_hash, address_line, city, country, status, reject_reason,
	submitted_at, verified_at`

// Upsert stores a submission. A resubmission after rejection replaces the
// previous row and resets the status to pending; a verified submission
// cannot be replaced.
func (r *KYCRepository) Upsert(detail *models.KYCDetail) error {
	detail.ID = uuid.New().String()
	result, err := r.db.Exec(`
		INSERT INTO kyc_details (
			id, user_id, full_name, date_of_birth, gender, nationality, id_type,
			id_number_hash, address_line, city, country, status, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    date_of_birth = EXCLUDED.date_of_birth,
		    gender = EXCLUDED.gender,
		    nationality = EXCLUDED.nationality,
		    id_type = EXCLUDED.id_type,
		    id_number_hash = EXCLUDED.id_number_hash,
		    address_line = EXCLUDED.address_line,
		    city = EXCLUDED.city,
		    country = EXCLUDED.country,
		    status = 'pending',
		    reject_reason = NULL,
		    submitted_at = NOW(),
		    verified_at = NULL
		WHERE kyc_details.status != 'verified'`,
		detail.ID, detail.UserID, detail.FullName, detail.DateOfBirth, detail.Gender,
		detail.Nationality, detail.IDType, detail.IDNumberHash, detail.AddressLine,
		detail.City, detail.Country)
	if err != nil {
		return fmt.Errorf("failed to store kyc submission: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &models.InvalidStateError{
			Entity:  "kyc",
			Status:  string(models.KYCStatusVerified),
			Message: "identity is already verified",
		}
	}
	return nil
}

// GetByUserID fetches a user's submission.
func (r *KYCRepository) GetByUserID(userID uuid.UUID) (*models.KYCDetail, error) {
	var detail models.KYCDetail
	err := r.db.Get(&detail, `SELECT `+kycColumns+` FROM kyc_details WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "kyc submission", ID: userID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kyc submission: %w", err)
	}
	return &detail, nil
}

// ListPending returns submissions awaiting admin review, oldest first.
func (r *KYCRepository) ListPending(limit, offset int) ([]models.KYCDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var details []models.KYCDetail
	err := r.db.Select(&details, `
		SELECT `+kycColumns+` FROM kyc_details
		WHERE status = 'pending'
		ORDER BY submitted_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending kyc: %w", err)
	}
	return details, nil
}

// CountPending returns the size of the review queue.
func (r *KYCRepository) CountPending() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM kyc_details WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending kyc: %w", err)
	}
	return count, nil
}

// Review records the admin decision and mirrors the verified flag on the
// user row in one transaction.
func (r *KYCRepository) Review(userID uuid.UUID, approve bool, rejectReason *string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var result sql.Result
	if approve {
		result, err = tx.Exec(`
			UPDATE kyc_details
			SET status = 'verified', reject_reason = NULL, verified_at = NOW()
			WHERE user_id = $1 AND status = 'pending'`, userID)
	} else {
		result, err = tx.Exec(`
			UPDATE kyc_details
			SET status = 'rejected', reject_reason = $2, verified_at = NULL
			WHERE user_id = $1 AND status = 'pending'`, userID, rejectReason)
	}
	if err != nil {
		return fmt.Errorf("failed to review kyc: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &models.NotFoundError{Resource: "pending kyc submission", ID: userID.String()}
	}

	_, err = tx.Exec(`
		UPDATE users SET is_kyc_completed = $1, updated_at = NOW() WHERE id = $2`,
		approve, userID)
	if err != nil {
		return fmt.Errorf("failed to update user kyc flag: %w", err)
	}

	return tx.Commit()
}
