package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlite/travel-booking-backend/internal/models"
)

func setupAvailabilityTest(t *testing.T) (*AvailabilityRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewAvailabilityRepository(sqlxDB), mock, func() { db.Close() }
}

func TestLockUnits_AllOrNothing(t *testing.T) {
	repo, mock, cleanup := setupAvailabilityTest(t)
	defer cleanup()

	holderID := uuid.New()
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	expiresAt := time.Now().Add(5 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second unit is blocked by someone else: zero rows, whole batch rolls back.
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM availability_records").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectRollback()

	err := repo.LockUnits(holderID, "sched-1", travelDate, []string{"unit-1", "unit-2"}, expiresAt)
	require.Error(t, err)

	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Units, "unit-2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUnits_FullBatchCommits(t *testing.T) {
	repo, mock, cleanup := setupAvailabilityTest(t)
	defer cleanup()

	holderID := uuid.New()
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	expiresAt := time.Now().Add(5 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO availability_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.LockUnits(holderID, "sched-1", travelDate, []string{"unit-1", "unit-2"}, expiresAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseLocksForHolder(t *testing.T) {
	repo, mock, cleanup := setupAvailabilityTest(t)
	defer cleanup()

	holderID := uuid.New()
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE availability_records").
		WithArgs(holderID, "sched-1", travelDate).
		WillReturnResult(sqlmock.NewResult(0, 3))

	released, err := repo.ReleaseLocksForHolder(holderID, "sched-1", travelDate)
	require.NoError(t, err)
	assert.Equal(t, 3, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredLocks(t *testing.T) {
	repo, mock, cleanup := setupAvailabilityTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE availability_records").
		WillReturnResult(sqlmock.NewResult(0, 7))

	swept, err := repo.SweepExpiredLocks(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 7, swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}
