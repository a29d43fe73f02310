package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/internal/services"
)

// AdminHandler handles the operator dashboard endpoints. All routes are
// behind RequireAdmin.
type AdminHandler struct {
	scheduleRepo *database.ScheduleRepository
	bookingRepo  *database.BookingRepository
	userRepo     *database.UserRepository
	txnRepo      *database.TransactionRepository
	kycService   *services.KYCService
	logger       *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	scheduleRepo *database.ScheduleRepository,
	bookingRepo *database.BookingRepository,
	userRepo *database.UserRepository,
	txnRepo *database.TransactionRepository,
	kycService *services.KYCService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		txnRepo:      txnRepo,
		kycService:   kycService,
		logger:       logger,
	}
}

// GetDashboardStats returns headline counts for the operator dashboard -
// GET /api/v1/admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	userCount, err := h.userRepo.CountUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	bookingCounts, err := h.bookingRepo.StatusCounts()
	if err != nil {
		respondError(c, err)
		return
	}
	revenue, err := h.bookingRepo.TotalRevenue()
	if err != nil {
		respondError(c, err)
		return
	}
	pendingKYC, err := h.kycService.CountPending()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       userCount,
		"bookings":    bookingCounts,
		"revenue":     revenue,
		"pending_kyc": pendingKYC,
	})
}

// CreateSchedule creates a schedule with its unit layout -
// POST /api/v1/admin/schedules
func (h *AdminHandler) CreateSchedule(c *gin.Context) {
	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}
	if !req.ResourceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "unknown resource type"})
		return
	}

	schedule := &models.Schedule{
		ResourceType: req.ResourceType,
		OperatorName: req.OperatorName,
		RouteCode:    req.RouteCode,
		Origin:       req.Origin,
		Destination:  req.Destination,
		DepartsAt:    req.DepartsAt,
		ArrivesAt:    req.ArrivesAt,
		BaseFare:     req.BaseFare,
		Currency:     req.Currency,
		TotalUnits:   len(req.Units),
	}
	if err := h.scheduleRepo.Create(schedule); err != nil {
		respondError(c, err)
		return
	}

	units := make([]models.BookableUnit, len(req.Units))
	for i, u := range req.Units {
		units[i] = models.BookableUnit{
			Label:         u.Label,
			RowNumber:     u.RowNumber,
			Position:      u.Position,
			UnitClass:     u.UnitClass,
			PriceModifier: u.PriceModifier,
		}
	}
	if err := h.scheduleRepo.CreateUnits(schedule.ID, units); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"schedule_id": schedule.ID,
		"type":        schedule.ResourceType,
		"units":       len(units),
	}).Info("Schedule created")
	c.JSON(http.StatusCreated, schedule)
}

// UpdateScheduleStatus cancels or reopens a schedule -
// PATCH /api/v1/admin/schedules/:id/status
func (h *AdminHandler) UpdateScheduleStatus(c *gin.Context) {
	var req struct {
		Status models.ScheduleStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	if err := h.scheduleRepo.UpdateStatus(c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// ListBookings lists bookings across all users -
// GET /api/v1/admin/bookings?status=
func (h *AdminHandler) ListBookings(c *gin.Context) {
	var status *models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := models.BookingStatus(raw)
		status = &s
	}

	bookings, err := h.bookingRepo.ListAll(status, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ListUsers lists accounts - GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers(queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// SetUserBlocked blocks or unblocks an account -
// PATCH /api/v1/admin/users/:id/block
func (h *AdminHandler) SetUserBlocked(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "invalid user id"})
		return
	}

	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	if err := h.userRepo.SetBlocked(userID, req.Blocked); err != nil {
		respondError(c, err)
		return
	}
	if req.Blocked {
		// A blocked account keeps no live sessions.
		if err := h.userRepo.RevokeAllSessions(userID); err != nil {
			h.logger.WithError(err).Warn("Failed to revoke sessions for blocked user")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

// ListPendingKYC lists submissions awaiting review -
// GET /api/v1/admin/kyc/pending
func (h *AdminHandler) ListPendingKYC(c *gin.Context) {
	details, err := h.kycService.ListPending(queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": details, "count": len(details)})
}

// ReviewKYC records the verification decision -
// POST /api/v1/admin/kyc/:userId/review
func (h *AdminHandler) ReviewKYC(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "invalid user id"})
		return
	}

	var req models.ReviewKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	if err := h.kycService.Review(userID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review recorded"})
}

// ListUserTransactions lists a user's payment history -
// GET /api/v1/admin/users/:id/transactions
func (h *AdminHandler) ListUserTransactions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "invalid user id"})
		return
	}

	txns, err := h.txnRepo.ListByUser(userID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns)})
}
