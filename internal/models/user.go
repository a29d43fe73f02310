package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the access level of an account.
type UserRole string

const (
	UserRoleTraveler UserRole = "traveler"
	UserRoleAdmin    UserRole = "admin"
)

// User represents a registered account.
type User struct {
	ID                      uuid.UUID  `json:"id" db:"id"`
	Email                   string     `json:"email" db:"email"`
	PasswordHash            string     `json:"-" db:"password_hash"`
	FullName                string     `json:"full_name" db:"full_name"`
	Phone                   *string    `json:"phone,omitempty" db:"phone"`
	Role                    UserRole   `json:"role" db:"role"`
	IsBlocked               bool       `json:"is_blocked" db:"is_blocked"`
	IsKYCCompleted          bool       `json:"is_kyc_completed" db:"is_kyc_completed"`
	PaymentProfileCompleted bool       `json:"payment_profile_completed" db:"payment_profile_completed"`
	LastLoginAt             *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// UserSession tracks an issued refresh token together with the device it was
// issued to. Device fields are parsed from the User-Agent header at login.
type UserSession struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	RefreshTokenHash string    `json:"-" db:"refresh_token_hash"`
	IPAddress        string    `json:"ip_address" db:"ip_address"`
	Browser          string    `json:"browser" db:"browser"`
	BrowserVersion   string    `json:"browser_version" db:"browser_version"`
	OS               string    `json:"os" db:"os"`
	IsMobile         bool      `json:"is_mobile" db:"is_mobile"`
	ExpiresAt        time.Time `json:"expires_at" db:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest creates a new traveler account.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

// UpdateProfileRequest mutates the caller's own profile.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}
