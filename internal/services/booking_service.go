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

// EventPublisher is the slice of the queue publisher the booking flow needs.
// A nil publisher disables events without touching the booking path.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
	PublishBookingCancelled(ctx context.Context, event queue.BookingCancelledEvent) error
}

// BookingService converts held units into confirmed bookings and serves
// booking reads.
type BookingService struct {
	scheduleRepo *database.ScheduleRepository
	availRepo    *database.AvailabilityRepository
	bookingRepo  *database.BookingRepository
	payments     *PaymentService
	publisher    EventPublisher
	logger       *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	scheduleRepo *database.ScheduleRepository,
	availRepo *database.AvailabilityRepository,
	bookingRepo *database.BookingRepository,
	payments *PaymentService,
	publisher EventPublisher,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		scheduleRepo: scheduleRepo,
		availRepo:    availRepo,
		bookingRepo:  bookingRepo,
		payments:     payments,
		publisher:    publisher,
		logger:       logger,
	}
}

// FinalizeBooking turns the requester's held units into a confirmed booking:
// validates the holds, prices each passenger, charges the gateway, and
// commits booking, passengers, seat transitions and the charge in one
// transaction.
func (s *BookingService) FinalizeBooking(userID uuid.UUID, req *models.FinalizeBookingRequest) (*models.BookingDetail, error) {
	// 1. Structural validation beyond binding tags.
	if err := req.Validate(); err != nil {
		return nil, err
	}
	travelDate, err := parseTravelDate(req.TravelDate)
	if err != nil {
		return nil, err
	}

	// 2. The schedule must still be open.
	schedule, err := s.scheduleRepo.GetByID(req.ScheduleID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if schedule.Status != models.ScheduleStatusScheduled || schedule.Departed(now) {
		return nil, &models.InvalidStateError{
			Entity:  "schedule",
			Status:  string(schedule.Status),
			Message: "schedule is no longer open for booking",
		}
	}

	// 3. Every unit must belong to the schedule.
	unitIDs := make([]string, len(req.Passengers))
	for i, p := range req.Passengers {
		unitIDs[i] = p.UnitID
	}
	units, err := s.scheduleRepo.GetUnitsByIDs(req.ScheduleID, unitIDs)
	if err != nil {
		return nil, err
	}
	if len(units) != len(unitIDs) {
		return nil, &models.NotFoundError{Resource: "unit", ID: missingUnitID(unitIDs, units)}
	}
	unitsByID := make(map[string]models.BookableUnit, len(units))
	for _, u := range units {
		unitsByID[u.ID] = u
	}

	// 4. Every unit must carry a live lock owned by the requester. This is
	// a friendly pre-check; the conditional UPDATE inside the booking
	// transaction is what actually guarantees it.
	records, err := s.availRepo.GetRecords(req.ScheduleID, travelDate, unitIDs)
	if err != nil {
		return nil, err
	}
	recordsByUnit := make(map[string]models.AvailabilityRecord, len(records))
	for _, r := range records {
		recordsByUnit[r.UnitID] = r
	}
	for _, unitID := range unitIDs {
		record, ok := recordsByUnit[unitID]
		if !ok || !record.HeldBy(userID, now) {
			return nil, &models.ConflictError{
				Message: "unit is not held by you or the hold has expired",
				Units:   []string{unitID},
			}
		}
	}

	// 5. Price each passenger and total the booking.
	passengers := make([]models.Passenger, len(req.Passengers))
	fares := make([]float64, len(req.Passengers))
	for i, p := range req.Passengers {
		unit := unitsByID[p.UnitID]
		fare := PassengerFare(schedule.ResourceType, schedule.BaseFare, unit.PriceModifier, p.AgeCategory)
		fares[i] = fare

		var dob *time.Time
		if p.DateOfBirth != nil {
			parsed, err := time.Parse("2006-01-02", *p.DateOfBirth)
			if err != nil {
				return nil, &models.ValidationError{Field: "date_of_birth", Msg: "must be YYYY-MM-DD"}
			}
			dob = &parsed
		}
		passengers[i] = models.Passenger{
			UnitID:         p.UnitID,
			UnitLabel:      unit.Label,
			FullName:       p.FullName,
			AgeCategory:    p.AgeCategory,
			DateOfBirth:    dob,
			Gender:         p.Gender,
			DocumentNumber: p.DocumentNumber,
			AmountCharged:  fare,
		}
	}
	breakdown := ComputeBreakdown(schedule.ResourceType, fares)

	// 6. Charge the (mock) gateway before touching the ledger.
	gatewayRef, err := s.payments.Charge(userID, breakdown.TotalAmount, schedule.Currency, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	reference, err := s.bookingRepo.GenerateReference()
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Reference:     reference,
		UserID:        userID,
		ScheduleID:    schedule.ID,
		ResourceType:  schedule.ResourceType,
		TravelDate:    travelDate,
		Status:        models.BookingStatusConfirmed,
		BaseAmount:    breakdown.BaseAmount,
		TaxAmount:     breakdown.TaxAmount,
		FeeAmount:     breakdown.FeeAmount,
		TotalAmount:   breakdown.TotalAmount,
		Currency:      schedule.Currency,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: req.PaymentMethod,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
	}
	txn := &models.Transaction{
		UserID:           userID,
		Type:             models.TransactionTypeCharge,
		Amount:           breakdown.TotalAmount,
		Currency:         schedule.Currency,
		Method:           req.PaymentMethod,
		Status:           models.TransactionStatusSucceeded,
		GatewayReference: gatewayRef,
	}

	// 7. Commit the whole booking atomically.
	if err := s.bookingRepo.CreateBooking(booking, passengers, txn); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference":   booking.Reference,
		"user_id":     userID,
		"schedule_id": schedule.ID,
		"passengers":  len(passengers),
		"total":       booking.TotalAmount,
	}).Info("Booking confirmed")

	// 8. Publish the confirmation event. Best-effort: the booking is
	// already committed, so a broker outage only delays the notification.
	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
			Reference:    booking.Reference,
			UserID:       userID,
			ScheduleID:   schedule.ID,
			ResourceType: string(schedule.ResourceType),
			TravelDate:   req.TravelDate,
			Passengers:   len(passengers),
			TotalAmount:  booking.TotalAmount,
			Currency:     booking.Currency,
			ConfirmedAt:  time.Now().UTC(),
		})
	}

	return &models.BookingDetail{
		Booking:    *booking,
		Passengers: passengers,
		Schedule:   schedule,
	}, nil
}

// GetBooking returns a booking with passengers and schedule. Non-admin
// callers only see their own bookings; foreign references read as not found
// so references cannot be probed.
func (s *BookingService) GetBooking(reference string, userID uuid.UUID, isAdmin bool) (*models.BookingDetail, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		return nil, &models.NotFoundError{Resource: "booking", ID: reference}
	}

	passengers, err := s.bookingRepo.GetPassengers(booking.ID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.scheduleRepo.GetByID(booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	return &models.BookingDetail{
		Booking:    *booking,
		Passengers: passengers,
		Schedule:   schedule,
	}, nil
}

// ListBookings returns the caller's bookings, newest first.
func (s *BookingService) ListBookings(userID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(userID, limit, offset)
}
