package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle of a confirmed purchase.
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// AgeCategory determines the fare multiplier applied to a passenger.
type AgeCategory string

const (
	AgeCategoryAdult  AgeCategory = "adult"
	AgeCategoryChild  AgeCategory = "child"
	AgeCategoryInfant AgeCategory = "infant"
)

// Valid reports whether c is a known age category.
func (c AgeCategory) Valid() bool {
	switch c {
	case AgeCategoryAdult, AgeCategoryChild, AgeCategoryInfant:
		return true
	}
	return false
}

// Booking is a confirmed purchase. Rows are never physically deleted;
// cancellation flips the status and records the refund.
type Booking struct {
	ID            string        `json:"id" db:"id"`
	Reference     string        `json:"reference" db:"reference"`
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	ScheduleID    string        `json:"schedule_id" db:"schedule_id"`
	ResourceType  ResourceType  `json:"resource_type" db:"resource_type"`
	TravelDate    time.Time     `json:"travel_date" db:"travel_date"`
	Status        BookingStatus `json:"status" db:"status"`
	BaseAmount    float64       `json:"base_amount" db:"base_amount"`
	TaxAmount     float64       `json:"tax_amount" db:"tax_amount"`
	FeeAmount     float64       `json:"fee_amount" db:"fee_amount"`
	TotalAmount   float64       `json:"total_amount" db:"total_amount"`
	Currency      string        `json:"currency" db:"currency"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod string        `json:"payment_method" db:"payment_method"`
	ContactName   string        `json:"contact_name" db:"contact_name"`
	ContactPhone  string        `json:"contact_phone" db:"contact_phone"`
	ContactEmail  *string       `json:"contact_email,omitempty" db:"contact_email"`
	RefundPercent *int          `json:"refund_percent,omitempty" db:"refund_percent"`
	RefundAmount  *float64      `json:"refund_amount,omitempty" db:"refund_amount"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Cancellable reports whether the booking may still be cancelled.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// Passenger is the denormalized per-unit occupant record. Created at
// finalization, immutable afterwards.
type Passenger struct {
	ID             string      `json:"id" db:"id"`
	BookingID      string      `json:"booking_id" db:"booking_id"`
	UnitID         string      `json:"unit_id" db:"unit_id"`
	UnitLabel      string      `json:"unit_label" db:"unit_label"`
	FullName       string      `json:"full_name" db:"full_name"`
	AgeCategory    AgeCategory `json:"age_category" db:"age_category"`
	DateOfBirth    *time.Time  `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender         *string     `json:"gender,omitempty" db:"gender"`
	DocumentNumber *string     `json:"document_number,omitempty" db:"document_number"`
	AmountCharged  float64     `json:"amount_charged" db:"amount_charged"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// ============================================================================
// REQUEST/RESPONSE STRUCTS
// ============================================================================

// PassengerRequest describes one occupant in a finalize request. UnitID must
// reference a unit currently locked by the requester.
type PassengerRequest struct {
	UnitID         string      `json:"unit_id" binding:"required"`
	FullName       string      `json:"full_name" binding:"required"`
	AgeCategory    AgeCategory `json:"age_category" binding:"required"`
	DateOfBirth    *string     `json:"date_of_birth,omitempty"` // "2006-01-02"
	Gender         *string     `json:"gender,omitempty"`
	DocumentNumber *string     `json:"document_number,omitempty"`
}

// FinalizeBookingRequest converts previously locked units into a booking.
type FinalizeBookingRequest struct {
	ScheduleID    string             `json:"schedule_id" binding:"required"`
	TravelDate    string             `json:"travel_date" binding:"required"`
	Passengers    []PassengerRequest `json:"passengers" binding:"required,min=1,max=10"`
	ContactName   string             `json:"contact_name" binding:"required"`
	ContactPhone  string             `json:"contact_phone" binding:"required"`
	ContactEmail  *string            `json:"contact_email,omitempty"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
}

// Validate applies the checks gin's binding tags cannot express.
func (r *FinalizeBookingRequest) Validate() error {
	seen := make(map[string]bool, len(r.Passengers))
	for _, p := range r.Passengers {
		if !p.AgeCategory.Valid() {
			return &ValidationError{Field: "age_category", Msg: "must be adult, child or infant"}
		}
		if seen[p.UnitID] {
			return &ValidationError{Field: "unit_id", Msg: "duplicate unit " + p.UnitID}
		}
		seen[p.UnitID] = true
	}
	return nil
}

// BookingDetail is a booking with its passengers, as returned to clients.
type BookingDetail struct {
	Booking    Booking     `json:"booking"`
	Passengers []Passenger `json:"passengers"`
	Schedule   *Schedule   `json:"schedule,omitempty"`
}

// CancelBookingResponse reports the refund outcome of a cancellation.
type CancelBookingResponse struct {
	Reference        string  `json:"reference"`
	RefundPercentage int     `json:"refund_percentage"`
	RefundAmount     float64 `json:"refund_amount"`
	RefundStatus     string  `json:"refund_status"`
}
