package models

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus represents the verification state of a KYC submission.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
	KYCStatusRejected KYCStatus = "rejected"
)

// KYCDetail is a user's identity verification submission. The raw document
// number is never stored; only its hash is persisted.
type KYCDetail struct {
	ID           string     `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	FullName     string     `json:"full_name" db:"full_name"`
	DateOfBirth  time.Time  `json:"date_of_birth" db:"date_of_birth"`
	Gender       *string    `json:"gender,omitempty" db:"gender"`
	Nationality  string     `json:"nationality" db:"nationality"`
	IDType       string     `json:"id_type" db:"id_type"` // passport, national_id, driving_license
	IDNumberHash string     `json:"-" db:"id_number_hash"`
	AddressLine  string     `json:"address_line" db:"address_line"`
	City         string     `json:"city" db:"city"`
	Country      string     `json:"country" db:"country"`
	Status       KYCStatus  `json:"status" db:"status"`
	RejectReason *string    `json:"reject_reason,omitempty" db:"reject_reason"`
	SubmittedAt  time.Time  `json:"submitted_at" db:"submitted_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty" db:"verified_at"`
}

// SubmitKYCRequest carries a new identity submission.
type SubmitKYCRequest struct {
	FullName    string  `json:"full_name" binding:"required"`
	DateOfBirth string  `json:"date_of_birth" binding:"required"` // "2006-01-02"
	Gender      *string `json:"gender,omitempty"`
	Nationality string  `json:"nationality" binding:"required"`
	IDType      string  `json:"id_type" binding:"required"`
	IDNumber    string  `json:"id_number" binding:"required"`
	AddressLine string  `json:"address_line" binding:"required"`
	City        string  `json:"city" binding:"required"`
	Country     string  `json:"country" binding:"required"`
}

// ReviewKYCRequest is the admin decision on a pending submission.
type ReviewKYCRequest struct {
	Approve      bool    `json:"approve"`
	RejectReason *string `json:"reject_reason,omitempty"`
}
