package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/middleware"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/internal/services"
)

// KYCHandler handles identity verification endpoints
type KYCHandler struct {
	kycService *services.KYCService
	logger     *logrus.Logger
}

// NewKYCHandler creates a new KYCHandler
func NewKYCHandler(kycService *services.KYCService, logger *logrus.Logger) *KYCHandler {
	return &KYCHandler{kycService: kycService, logger: logger}
}

// Submit stores an identity submission - POST /api/v1/kyc
func (h *KYCHandler) Submit(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	detail, err := h.kycService.Submit(user.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// Status returns the caller's submission - GET /api/v1/kyc
func (h *KYCHandler) Status(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	detail, err := h.kycService.Status(user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
