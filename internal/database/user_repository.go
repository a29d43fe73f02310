package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// UserRepository handles user accounts and refresh-token sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, full_name, phone, role, is_blocked,
	is_kyc_completed, payment_profile_completed, last_login_at, created_at, updated_at`

// Create inserts a new account. Returns a conflict when the email is taken.
func (r *UserRepository) Create(user *models.User) error {
	user.ID = uuid.New()
	_, err := r.db.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, phone, role, created_at, updated_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, NOW(), NOW())`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return &models.ConflictError{Message: "email already registered"}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "user", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the caller's profile changes.
func (r *UserRepository) UpdateProfile(id uuid.UUID, req models.UpdateProfileRequest) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET full_name = COALESCE($1, full_name),
		    phone = COALESCE($2, phone),
		    updated_at = NOW()
		WHERE id = $3`, req.FullName, req.Phone, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SetBlocked toggles the account block flag.
func (r *UserRepository) SetBlocked(id uuid.UUID, blocked bool) error {
	result, err := r.db.Exec(`
		UPDATE users SET is_blocked = $1, updated_at = NOW() WHERE id = $2`, blocked, id)
	if err != nil {
		return fmt.Errorf("failed to update block flag: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &models.NotFoundError{Resource: "user", ID: id.String()}
	}
	return nil
}

// SetKYCCompleted marks the account as identity-verified.
func (r *UserRepository) SetKYCCompleted(id uuid.UUID, completed bool) error {
	_, err := r.db.Exec(`
		UPDATE users SET is_kyc_completed = $1, updated_at = NOW() WHERE id = $2`, completed, id)
	return err
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// ListUsers returns accounts for the admin dashboard, newest first.
func (r *UserRepository) ListUsers(limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var users []models.User
	err := r.db.Select(&users, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the total number of registered accounts.
func (r *UserRepository) CountUsers() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CreateSession stores a refresh-token session with its device fingerprint.
func (r *UserRepository) CreateSession(session *models.UserSession) error {
	session.ID = uuid.New()
	_, err := r.db.Exec(`
		INSERT INTO user_sessions (id, user_id, refresh_token_hash, ip_address,
			browser, browser_version, os, is_mobile, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		session.ID, session.UserID, session.RefreshTokenHash, session.IPAddress,
		session.Browser, session.BrowserVersion, session.OS, session.IsMobile,
		session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByTokenHash fetches a live (unrevoked, unexpired) session.
func (r *UserRepository) GetSessionByTokenHash(tokenHash string) (*models.UserSession, error) {
	var session models.UserSession
	err := r.db.Get(&session, `
		SELECT id, user_id, refresh_token_hash, ip_address, browser, browser_version,
		       os, is_mobile, expires_at, revoked_at, created_at
		FROM user_sessions
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()`,
		tokenHash)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "session", ID: ""}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// RevokeSession invalidates one session.
func (r *UserRepository) RevokeSession(id uuid.UUID) error {
	_, err := r.db.Exec(`
		UPDATE user_sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	return err
}

// RevokeAllSessions invalidates every session of a user, e.g. on logout-all
// or account block.
func (r *UserRepository) RevokeAllSessions(userID uuid.UUID) error {
	_, err := r.db.Exec(`
		UPDATE user_sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	return err
}

// DeleteExpiredSessions purges long-dead session rows. Housekeeping only.
func (r *UserRepository) DeleteExpiredSessions(olderThan time.Duration) (int, error) {
	result, err := r.db.Exec(`
		DELETE FROM user_sessions WHERE expires_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
