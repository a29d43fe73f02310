package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// KYCService handles identity verification submissions and admin review.
type KYCService struct {
	kycRepo   *database.KYCRepository
	notifRepo *database.NotificationRepository
	logger    *logrus.Logger
}

// NewKYCService creates a new KYCService
func NewKYCService(kycRepo *database.KYCRepository, notifRepo *database.NotificationRepository, logger *logrus.Logger) *KYCService {
	return &KYCService{kycRepo: kycRepo, notifRepo: notifRepo, logger: logger}
}

// Submit stores an identity submission. The document number is hashed
// before it touches the database; the raw value is never persisted.
func (s *KYCService) Submit(userID uuid.UUID, req *models.SubmitKYCRequest) (*models.KYCDetail, error) {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, &models.ValidationError{Field: "date_of_birth", Msg: "must be YYYY-MM-DD"}
	}

	detail := &models.KYCDetail{
		UserID:       userID,
		FullName:     strings.TrimSpace(req.FullName),
		DateOfBirth:  dob,
		Gender:       req.Gender,
		Nationality:  strings.TrimSpace(req.Nationality),
		IDType:       strings.TrimSpace(req.IDType),
		IDNumberHash: hashDocumentNumber(req.IDNumber),
		AddressLine:  strings.TrimSpace(req.AddressLine),
		City:         strings.TrimSpace(req.City),
		Country:      strings.TrimSpace(req.Country),
		Status:       models.KYCStatusPending,
	}
	if err := s.kycRepo.Upsert(detail); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", userID).Info("KYC submitted")
	return detail, nil
}

// Status returns the caller's submission.
func (s *KYCService) Status(userID uuid.UUID) (*models.KYCDetail, error) {
	return s.kycRepo.GetByUserID(userID)
}

// ListPending returns submissions awaiting review, oldest first.
func (s *KYCService) ListPending(limit, offset int) ([]models.KYCDetail, error) {
	return s.kycRepo.ListPending(limit, offset)
}

// CountPending returns the size of the review queue.
func (s *KYCService) CountPending() (int, error) {
	return s.kycRepo.CountPending()
}

// Review records the admin decision and notifies the user. A rejection
// requires a reason.
func (s *KYCService) Review(userID uuid.UUID, req *models.ReviewKYCRequest) error {
	if !req.Approve && (req.RejectReason == nil || strings.TrimSpace(*req.RejectReason) == "") {
		return &models.ValidationError{Field: "reject_reason", Msg: "required when rejecting"}
	}
	if err := s.kycRepo.Review(userID, req.Approve, req.RejectReason); err != nil {
		return err
	}

	title := "Identity verified"
	body := "Your identity verification was approved."
	if !req.Approve {
		title = "Identity verification rejected"
		body = "Your identity verification was rejected: " + *req.RejectReason
	}
	if err := s.notifRepo.Create(&models.Notification{
		UserID: userID,
		Kind:   models.NotificationKindKYCDecision,
		Title:  title,
		Body:   body,
	}); err != nil {
		s.logger.WithError(err).Warn("Failed to create KYC notification")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"approved": req.Approve,
	}).Info("KYC reviewed")
	return nil
}

// hashDocumentNumber normalizes and hashes an identity document number.
func hashDocumentNumber(number string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), " ", ""))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
