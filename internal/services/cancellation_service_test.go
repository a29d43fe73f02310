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

func setupCancellationTest(t *testing.T) (*CancellationService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	scheduleRepo := database.NewScheduleRepository(sqlxDB)
	availRepo := database.NewAvailabilityRepository(sqlxDB)
	bookingRepo := database.NewBookingRepository(sqlxDB, availRepo)
	payments := NewPaymentService(testLogger())
	service := NewCancellationService(scheduleRepo, bookingRepo, payments, nil, testLogger())

	return service, mock, func() { db.Close() }
}

var bookingColumns = []string{
	"id", "reference", "user_id", "schedule_id", "resource_type", "travel_date", "status",
	"base_amount", "tax_amount", "fee_amount", "total_amount", "currency",
	"payment_status", "payment_method", "contact_name", "contact_phone", "contact_email",
	"refund_percent", "refund_amount", "cancelled_at", "created_at", "updated_at",
}

func bookingRow(reference string, userID uuid.UUID, status models.BookingStatus, total float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingColumns).AddRow(
		"bk-1", reference, userID.String(), "sched-1", "bus", now.Add(72*time.Hour), status,
		total*0.8, total*0.1, total*0.1, total, "USD",
		"paid", "card", "Asha Perera", "+94771234567", nil,
		nil, nil, nil, now, now,
	)
}

func TestCancelBooking_EarlyBusCancellationRefunds90(t *testing.T) {
	service, mock, cleanup := setupCancellationTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(72 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
		WillReturnRows(bookingRow("WL-20260901-ABC234", userID, models.BookingStatusConfirmed, 200))
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE availability_records").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := service.CancelBooking("WL-20260901-ABC234", userID, false)
	require.NoError(t, err)

	assert.Equal(t, 90, resp.RefundPercentage)
	assert.Equal(t, 180.0, resp.RefundAmount)
	assert.Equal(t, "refunded", resp.RefundStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_LateCancellationRefundsNothing(t *testing.T) {
	service, mock, cleanup := setupCancellationTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(2 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
		WillReturnRows(bookingRow("WL-20260901-ABC234", userID, models.BookingStatusConfirmed, 200))
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))

	// No refund transaction row when the refund is zero.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE availability_records").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := service.CancelBooking("WL-20260901-ABC234", userID, false)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.RefundPercentage)
	assert.Equal(t, 0.0, resp.RefundAmount)
	assert.Equal(t, "no_refund", resp.RefundStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_ForeignBookingReadsAsNotFound(t *testing.T) {
	service, mock, cleanup := setupCancellationTest(t)
	defer cleanup()

	owner := uuid.New()
	stranger := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
		WillReturnRows(bookingRow("WL-20260901-ABC234", owner, models.BookingStatusConfirmed, 200))

	_, err := service.CancelBooking("WL-20260901-ABC234", stranger, false)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	service, mock, cleanup := setupCancellationTest(t)
	defer cleanup()

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
		WillReturnRows(bookingRow("WL-20260901-ABC234", userID, models.BookingStatusCancelled, 200))

	_, err := service.CancelBooking("WL-20260901-ABC234", userID, false)
	require.Error(t, err)
	assert.True(t, models.IsInvalidState(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_AfterDepartureRejected(t *testing.T) {
	service, mock, cleanup := setupCancellationTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(-time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
		WillReturnRows(bookingRow("WL-20260901-ABC234", userID, models.BookingStatusConfirmed, 200))
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))

	_, err := service.CancelBooking("WL-20260901-ABC234", userID, false)
	require.Error(t, err)
	assert.True(t, models.IsInvalidState(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
