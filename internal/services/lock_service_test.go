package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlite/travel-booking-backend/internal/config"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupLockServiceTest(t *testing.T) (*LockService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	scheduleRepo := database.NewScheduleRepository(sqlxDB)
	availRepo := database.NewAvailabilityRepository(sqlxDB)
	cfg := config.LockConfig{
		GroundTTL: 5 * time.Minute,
		FlightTTL: 7 * time.Minute,
	}
	service := NewLockService(scheduleRepo, availRepo, cfg, testLogger())

	return service, mock, func() { db.Close() }
}

var scheduleColumns = []string{
	"id", "resource_type", "operator_name", "route_code", "origin", "destination",
	"departs_at", "arrives_at", "base_fare", "currency", "total_units", "available_units",
	"status", "created_at", "updated_at",
}

func scheduleRow(id string, resourceType models.ResourceType, departsAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(scheduleColumns).AddRow(
		id, resourceType, "GreenLine", "CMB-KDY", "Colombo", "Kandy",
		departsAt, nil, 1200.0, "USD", 40, 38, "scheduled", now, now,
	)
}

var unitColumns = []string{
	"id", "schedule_id", "label", "row_number", "position", "unit_class", "price_modifier", "created_at",
}

func TestLockUnits_Success(t *testing.T) {
	service, mock, cleanup := setupLockServiceTest(t)
	defer cleanup()

	userID := uuid.New()
	departsAt := time.Now().Add(48 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WithArgs("sched-1").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))

	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, time.Now()).
			AddRow("u2", "sched-1", "12B", 12, 2, "standard", 0.0, time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := service.LockUnits(userID, &models.LockRequest{
		ScheduleID: "sched-1",
		TravelDate: "2026-09-10",
		UnitIDs:    []string{"u1", "u2"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, resp.LockedUnits)
	assert.Equal(t, 300, resp.TTLSeconds)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), resp.ExpiresAt, 2*time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUnits_FlightGetsLongerTTL(t *testing.T) {
	service, mock, cleanup := setupLockServiceTest(t)
	defer cleanup()

	departsAt := time.Now().Add(72 * time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("fl-1", models.ResourceTypeFlight, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "fl-1", "21C", 21, 3, "economy", 0.0, time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := service.LockUnits(uuid.New(), &models.LockRequest{
		ScheduleID: "fl-1",
		TravelDate: "2026-09-10",
		UnitIDs:    []string{"u1"},
	})

	require.NoError(t, err)
	assert.Equal(t, 420, resp.TTLSeconds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUnits_ConflictRollsBackWholeBatch(t *testing.T) {
	service, mock, cleanup := setupLockServiceTest(t)
	defer cleanup()

	departsAt := time.Now().Add(48 * time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, time.Now()).
			AddRow("u2", "sched-1", "12B", 12, 2, "standard", 0.0, time.Now()))

	mock.ExpectBegin()
	// First seat locks, the second is booked by someone else.
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM availability_records").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectRollback()

	_, err := service.LockUnits(uuid.New(), &models.LockRequest{
		ScheduleID: "sched-1",
		TravelDate: "2026-09-10",
		UnitIDs:    []string{"u1", "u2"},
	})

	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
	assert.Contains(t, err.Error(), "booked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUnits_DepartedScheduleRejected(t *testing.T) {
	service, mock, cleanup := setupLockServiceTest(t)
	defer cleanup()

	departsAt := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))

	_, err := service.LockUnits(uuid.New(), &models.LockRequest{
		ScheduleID: "sched-1",
		TravelDate: "2026-09-10",
		UnitIDs:    []string{"u1"},
	})

	require.Error(t, err)
	assert.True(t, models.IsInvalidState(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUnits_UnknownUnitRejected(t *testing.T) {
	service, mock, cleanup := setupLockServiceTest(t)
	defer cleanup()

	departsAt := time.Now().Add(48 * time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id").
		WillReturnRows(scheduleRow("sched-1", models.ResourceTypeBus, departsAt))
	// Only one of the two requested units belongs to the schedule.
	mock.ExpectQuery("SELECT (.+) FROM bookable_units").
		WillReturnRows(sqlmock.NewRows(unitColumns).
			AddRow("u1", "sched-1", "12A", 12, 1, "standard", 0.0, time.Now()))

	_, err := service.LockUnits(uuid.New(), &models.LockRequest{
		ScheduleID: "sched-1",
		TravelDate: "2026-09-10",
		UnitIDs:    []string{"u1", "ghost"},
	})

	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, err.Error(), "ghost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUnits_BadTravelDate(t *testing.T) {
	service, _, cleanup := setupLockServiceTest(t)
	defer cleanup()

	_, err := service.LockUnits(uuid.New(), &models.LockRequest{
		ScheduleID: "sched-1",
		TravelDate: "10/09/2026",
		UnitIDs:    []string{"u1"},
	})
	require.Error(t, err)
}
