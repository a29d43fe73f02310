package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/pkg/jwt"
)

// DeviceInfo is the device fingerprint captured at login, parsed from the
// User-Agent header by the handler.
type DeviceInfo struct {
	IPAddress      string
	Browser        string
	BrowserVersion string
	OS             string
	IsMobile       bool
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	userRepo *database.UserRepository
	tokens   *jwt.Service
	logger   *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *database.UserRepository, tokens *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, logger: logger}
}

// Register creates a traveler account and returns a token pair.
func (s *AuthService) Register(req *models.RegisterRequest, device DeviceInfo) (*models.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         models.UserRoleTraveler,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.issueTokens(user, device)
}

// Login verifies credentials and returns a token pair. Blocked accounts are
// rejected after the password check so the error does not reveal whether the
// password was right.
func (s *AuthService) Login(req *models.LoginRequest, device DeviceInfo) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, &models.ValidationError{Field: "credentials", Msg: "invalid email or password"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &models.ValidationError{Field: "credentials", Msg: "invalid email or password"}
	}
	if user.IsBlocked {
		return nil, &models.InvalidStateError{Entity: "user", Status: "blocked", Message: "account is blocked"}
	}

	if err := s.userRepo.TouchLastLogin(user.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to record last login")
	}

	return s.issueTokens(user, device)
}

// Refresh exchanges a live refresh token for a new token pair. The old
// session is revoked; refresh tokens are single-use.
func (s *AuthService) Refresh(refreshToken string, device DeviceInfo) (*models.TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, &models.ValidationError{Field: "refresh_token", Msg: "invalid or expired refresh token"}
	}

	session, err := s.userRepo.GetSessionByTokenHash(hashToken(refreshToken))
	if err != nil {
		return nil, &models.ValidationError{Field: "refresh_token", Msg: "session is no longer valid"}
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, &models.InvalidStateError{Entity: "user", Status: "blocked", Message: "account is blocked"}
	}

	if err := s.userRepo.RevokeSession(session.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(user, device)
}

// Logout revokes the session behind a refresh token. Unknown tokens are a
// no-op.
func (s *AuthService) Logout(refreshToken string) error {
	session, err := s.userRepo.GetSessionByTokenHash(hashToken(refreshToken))
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return err
	}
	return s.userRepo.RevokeSession(session.ID)
}

// GetProfile returns the caller's account.
func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile applies profile changes and returns the updated account.
func (s *AuthService) UpdateProfile(userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(userID, req); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// issueTokens mints an access/refresh pair and stores the refresh session
// with the device fingerprint it was issued to.
func (s *AuthService) issueTokens(user *models.User, device DeviceInfo) (*models.TokenResponse, error) {
	accessToken, accessExpiry, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiry, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	session := &models.UserSession{
		UserID:           user.ID,
		RefreshTokenHash: hashToken(refreshToken),
		IPAddress:        device.IPAddress,
		Browser:          device.Browser,
		BrowserVersion:   device.BrowserVersion,
		OS:               device.OS,
		IsMobile:         device.IsMobile,
		ExpiresAt:        refreshExpiry,
	}
	if err := s.userRepo.CreateSession(session); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
		User:         user,
	}, nil
}

// hashToken stores refresh tokens by SHA-256 digest so a database leak does
// not leak usable tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
