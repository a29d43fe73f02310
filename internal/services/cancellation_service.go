package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/internal/queue"
)

// CancellationService cancels bookings and computes refunds from the
// per-resource-type policy staircases.
type CancellationService struct {
	scheduleRepo *database.ScheduleRepository
	bookingRepo  *database.BookingRepository
	payments     *PaymentService
	publisher    EventPublisher
	logger       *logrus.Logger
}

// NewCancellationService creates a new CancellationService
func NewCancellationService(
	scheduleRepo *database.ScheduleRepository,
	bookingRepo *database.BookingRepository,
	payments *PaymentService,
	publisher EventPublisher,
	logger *logrus.Logger,
) *CancellationService {
	return &CancellationService{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		payments:     payments,
		publisher:    publisher,
		logger:       logger,
	}
}

// CancelBooking cancels a booking, computes the refund from the resource
// type's policy, frees the seats, and records the refund movement. Only the
// booking owner (or an admin) may cancel.
func (s *CancellationService) CancelBooking(reference string, userID uuid.UUID, isAdmin bool) (*models.CancelBookingResponse, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		return nil, &models.NotFoundError{Resource: "booking", ID: reference}
	}
	if !booking.Cancellable() {
		return nil, &models.InvalidStateError{
			Entity:  "booking",
			Status:  string(booking.Status),
			Message: "booking cannot be cancelled in its current state",
		}
	}

	schedule, err := s.scheduleRepo.GetByID(booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if schedule.Departed(now) {
		return nil, &models.InvalidStateError{
			Entity:  "booking",
			Status:  string(booking.Status),
			Message: "departure time has passed",
		}
	}

	percent := PolicyFor(booking.ResourceType).PercentFor(schedule.DepartsAt, now)
	refundAmount := roundMoney(booking.TotalAmount * float64(percent) / 100)

	refundTxn := &models.Transaction{
		UserID:   booking.UserID,
		Type:     models.TransactionTypeRefund,
		Amount:   refundAmount,
		Currency: booking.Currency,
		Method:   booking.PaymentMethod,
		Status:   models.TransactionStatusSucceeded,
	}
	if refundAmount > 0 {
		gatewayRef, err := s.payments.Refund(booking.UserID, refundAmount, booking.Currency)
		if err != nil {
			return nil, err
		}
		refundTxn.GatewayReference = gatewayRef
	}

	if err := s.bookingRepo.CancelBooking(booking, percent, refundAmount, refundTxn); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference":      reference,
		"user_id":        booking.UserID,
		"refund_percent": percent,
		"refund_amount":  refundAmount,
	}).Info("Booking cancelled")

	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
			Reference:     reference,
			UserID:        booking.UserID,
			ResourceType:  string(booking.ResourceType),
			RefundPercent: percent,
			RefundAmount:  refundAmount,
			Currency:      booking.Currency,
			CancelledAt:   now.UTC(),
		})
	}

	refundStatus := "refunded"
	if refundAmount == 0 {
		refundStatus = "no_refund"
	}
	return &models.CancelBookingResponse{
		Reference:        reference,
		RefundPercentage: percent,
		RefundAmount:     refundAmount,
		RefundStatus:     refundStatus,
	}, nil
}
