package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// PaymentService is the mock payment gateway. Charges and refunds always
// succeed and return a synthetic gateway reference; swapping in a real
// gateway means reimplementing these two methods.
type PaymentService struct {
	logger *logrus.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(logger *logrus.Logger) *PaymentService {
	return &PaymentService{logger: logger}
}

var allowedMethods = map[string]bool{
	"card":   true,
	"upi":    true,
	"wallet": true,
}

// Charge debits the given amount and returns the gateway reference.
func (s *PaymentService) Charge(userID uuid.UUID, amount float64, currency, method string) (string, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if !allowedMethods[method] {
		return "", &models.ValidationError{Field: "payment_method", Msg: "must be card, upi or wallet"}
	}
	if amount <= 0 {
		return "", &models.ValidationError{Field: "amount", Msg: "must be positive"}
	}

	reference := fmt.Sprintf("MOCK-CHG-%s", uuid.New().String()[:8])
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount,
		"currency":  currency,
		"method":    method,
		"reference": reference,
	}).Info("Mock charge succeeded")
	return reference, nil
}

// Refund credits the given amount back and returns the gateway reference.
func (s *PaymentService) Refund(userID uuid.UUID, amount float64, currency string) (string, error) {
	if amount <= 0 {
		return "", &models.ValidationError{Field: "amount", Msg: "must be positive"}
	}

	reference := fmt.Sprintf("MOCK-RFD-%s", uuid.New().String()[:8])
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount,
		"currency":  currency,
		"reference": reference,
	}).Info("Mock refund succeeded")
	return reference, nil
}
