package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityStatus represents the stored state of one unit for one date.
// Matches PostgreSQL ENUM: availability_status
type AvailabilityStatus string

const (
	AvailabilityStatusAvailable AvailabilityStatus = "available"
	AvailabilityStatusLocked    AvailabilityStatus = "locked"
	AvailabilityStatusBooked    AvailabilityStatus = "booked"
	AvailabilityStatusBlocked   AvailabilityStatus = "blocked"
)

// AvailabilityRecord is the per-(unit, date) ledger row. Rows are created
// lazily on the first lock attempt; a missing row means available.
//
// The stored status is not authoritative on its own: a locked row whose
// expiry has passed must be treated as available. Every reader goes through
// EffectiveStatus rather than comparing Status directly.
type AvailabilityRecord struct {
	ID            string             `json:"id" db:"id"`
	UnitID        string             `json:"unit_id" db:"unit_id"`
	ScheduleID    string             `json:"schedule_id" db:"schedule_id"`
	TravelDate    time.Time          `json:"travel_date" db:"travel_date"`
	Status        AvailabilityStatus `json:"status" db:"status"`
	HolderID      *uuid.UUID         `json:"holder_id,omitempty" db:"holder_id"`
	LockExpiresAt *time.Time         `json:"lock_expires_at,omitempty" db:"lock_expires_at"`
	BookingID     *string            `json:"booking_id,omitempty" db:"booking_id"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus resolves the stored status against the clock. This is the
// single place where lazy lock expiry is applied; call sites must not
// reimplement the expiry comparison.
func (r *AvailabilityRecord) EffectiveStatus(now time.Time) AvailabilityStatus {
	if r.Status == AvailabilityStatusLocked {
		if r.LockExpiresAt == nil || !r.LockExpiresAt.After(now) {
			return AvailabilityStatusAvailable
		}
	}
	return r.Status
}

// HeldBy reports whether the record carries a live lock owned by userID.
func (r *AvailabilityRecord) HeldBy(userID uuid.UUID, now time.Time) bool {
	if r.Status != AvailabilityStatusLocked || r.HolderID == nil {
		return false
	}
	return *r.HolderID == userID && r.LockExpiresAt != nil && r.LockExpiresAt.After(now)
}

// LockRequest is the request body for placing a hold on a set of units.
type LockRequest struct {
	ScheduleID string   `json:"schedule_id" binding:"required"`
	TravelDate string   `json:"travel_date" binding:"required"` // "2006-01-02"
	UnitIDs    []string `json:"unit_ids" binding:"required,min=1,max=10"`
}

// LockResponse reports the successfully held units and the shared expiry.
type LockResponse struct {
	LockedUnits []string  `json:"locked_units"`
	ExpiresAt   time.Time `json:"expires_at"`
	TTLSeconds  int       `json:"ttl_seconds"`
}
