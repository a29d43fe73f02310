package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

func setupBookingServiceTest(t *testing.T) (*BookingService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	scheduleRepo := database.NewScheduleRepository(sqlxDB)
	availRepo := database.NewAvailabilityRepository(sqlxDB)
	bookingRepo := database.NewBookingRepository(sqlxDB, availRepo)
	payments := NewPaymentService(testLogger())
	service := NewBookingService(scheduleRepo, availRepo, bookingRepo, payments, nil, testLogger())

	return service, mock, func() { db.Close() }
}

var availabilityColumns = []string{
	"id", "unit_id", "schedule_id", "travel_date", "status", "holder_id",
	"lock_expires_at", "booking_id", "created_at", "updated_at",
}

func finalizeRequest() *models.FinalizeBookingRequest {
	return &models.FinalizeBookingRequest{
		ScheduleID: "sched-1",
		TravelDate: "2026-09-10",
		Passengers: []models.PassengerRequest{
			{UnitID: "u1", FullName: "Asha Perera", AgeCategory: models.AgeCategoryAdult},
		},
		ContactName:   "Asha Perera",
		ContactPhone:  "+94771234567",
		PaymentMethod: "card",
	}
}

func TestFinalizeBooking_Success(t *testing.T) {
	service, mock, cleanup := setupBookingServiceTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(48 * time.Hour)
	travelDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	expiry := time.Now().Add(4 * time.Minute)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, now))
	mock.ExpectQuery("SELECT (.+) FROM availability_records").
		WillReturnRows(sqlmock.NewRows(availabilityColumns).
			AddRow("ar1", "u1", "sched-1", travelDate, "locked", userID.String(), expiry, nil, now, now))

	// Unique reference check, then the atomic booking transaction.
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO passengers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	detail, err := service.FinalizeBooking(userID, finalizeRequest())
	require.NoError(t, err)

	// Base 1200 adult fare, 5% tax, flat 30 bus fee.
	assert.Equal(t, 1200.0, detail.Booking.BaseAmount)
	assert.Equal(t, 60.0, detail.Booking.TaxAmount)
	assert.Equal(t, 30.0, detail.Booking.FeeAmount)
	assert.Equal(t, 1290.0, detail.Booking.TotalAmount)
	assert.Equal(t, models.BookingStatusConfirmed, detail.Booking.Status)
	assert.Equal(t, models.PaymentStatusPaid, detail.Booking.PaymentStatus)
	assert.Len(t, detail.Passengers, 1)
	assert.Equal(t, "12A", detail.Passengers[0].UnitLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeBooking_ForeignHoldRejected(t *testing.T) {
	service, mock, cleanup := setupBookingServiceTest(t)
	defer cleanup()

	userID := uuid.New()
	stranger := uuid.New()
	departsAt := time.Now().Add(48 * time.Hour)
	travelDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	expiry := time.Now().Add(4 * time.Minute)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, now))
	mock.ExpectQuery("SELECT (.+) FROM availability_records").
		WillReturnRows(sqlmock.NewRows(availabilityColumns).
			AddRow("ar1", "u1", "sched-1", travelDate, "locked", stranger.String(), expiry, nil, now, now))

	_, err := service.FinalizeBooking(userID, finalizeRequest())
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeBooking_ExpiredHoldRejected(t *testing.T) {
	service, mock, cleanup := setupBookingServiceTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(48 * time.Hour)
	travelDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	expiry := time.Now().Add(-time.Minute)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, now))
	mock.ExpectQuery("SELECT (.+) FROM availability_records").
		WillReturnRows(sqlmock.NewRows(availabilityColumns).
			AddRow("ar1", "u1", "sched-1", travelDate, "locked", userID.String(), expiry, nil, now, now))

	_, err := service.FinalizeBooking(userID, finalizeRequest())
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeBooking_NoHoldAtAllRejected(t *testing.T) {
	service, mock, cleanup := setupBookingServiceTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(48 * time.Hour)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, now))
	// No ledger row: the unit was never locked.
	mock.ExpectQuery("SELECT (.+) FROM availability_records").
		WillReturnRows(sqlmock.NewRows(availabilityColumns))

	_, err := service.FinalizeBooking(userID, finalizeRequest())
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeBooking_DuplicateUnitsRejected(t *testing.T) {
	service, _, cleanup := setupBookingServiceTest(t)
	defer cleanup()

	req := finalizeRequest()
	req.Passengers = append(req.Passengers, req.Passengers[0])

	_, err := service.FinalizeBooking(uuid.New(), req)
	require.Error(t, err)
}

func TestFinalizeBooking_BadPaymentMethod(t *testing.T) {
	service, mock, cleanup := setupBookingServiceTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(48 * time.Hour)
	travelDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	expiry := time.Now().Add(4 * time.Minute)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, now))
	mock.ExpectQuery("SELECT (.+) FROM availability_records").
		WillReturnRows(sqlmock.NewRows(availabilityColumns).
			AddRow("ar1", "u1", "sched-1", travelDate, "locked", userID.String(), expiry, nil, now, now))

	req := finalizeRequest()
	req.PaymentMethod = "cheque"

	_, err := service.FinalizeBooking(userID, req)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
