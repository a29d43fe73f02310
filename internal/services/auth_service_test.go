package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/pkg/jwt"
)

func setupAuthTest(t *testing.T) (*AuthService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	userRepo := database.NewUserRepository(sqlxDB)
	tokens := jwt.NewService("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	service := NewAuthService(userRepo, tokens, testLogger())

	return service, mock, func() { db.Close() }
}

var userColumns = []string{
	"id", "email", "password_hash", "full_name", "phone", "role",
	"is_blocked", "is_kyc_completed", "payment_profile_completed",
	"last_login_at", "created_at", "updated_at",
}

func userRow(t *testing.T, id uuid.UUID, email, password string, blocked bool) *sqlmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(
		id.String(), email, string(hash), "Asha Perera", nil, "traveler",
		blocked, false, false, nil, now, now,
	)
}

func testDevice() DeviceInfo {
	return DeviceInfo{
		IPAddress:      "203.0.113.7",
		Browser:        "Firefox",
		BrowserVersion: "128.0",
		OS:             "Linux",
	}
}

func TestLogin_Success(t *testing.T) {
	service, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("asha@example.com").
		WillReturnRows(userRow(t, userID, "asha@example.com", "s3cret-pw", false))
	mock.ExpectExec("UPDATE users SET last_login_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp, err := service.Login(&models.LoginRequest{Email: "asha@example.com", Password: "s3cret-pw"}, testDevice())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, userID, resp.User.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	service, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRow(t, uuid.New(), "asha@example.com", "s3cret-pw", false))

	_, err := service.Login(&models.LoginRequest{Email: "asha@example.com", Password: "wrong"}, testDevice())
	require.Error(t, err)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid email or password", verr.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmailUsesSameError(t *testing.T) {
	service, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := service.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "whatever"}, testDevice())
	require.Error(t, err)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid email or password", verr.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_BlockedAccount(t *testing.T) {
	service, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRow(t, uuid.New(), "asha@example.com", "s3cret-pw", true))

	_, err := service.Login(&models.LoginRequest{Email: "asha@example.com", Password: "s3cret-pw"}, testDevice())
	require.Error(t, err)
	assert.True(t, models.IsInvalidState(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout_UnknownTokenIsNoOp(t *testing.T) {
	service, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM user_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := service.Logout("not-a-real-token")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
