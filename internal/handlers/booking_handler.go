package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/middleware"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/internal/services"
)

// BookingHandler handles unit locking, booking finalization, cancellation
// and ticket download endpoints
type BookingHandler struct {
	lockService         *services.LockService
	bookingService      *services.BookingService
	cancellationService *services.CancellationService
	ticketService       *services.TicketService
	logger              *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	lockService *services.LockService,
	bookingService *services.BookingService,
	cancellationService *services.CancellationService,
	ticketService *services.TicketService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		lockService:         lockService,
		bookingService:      bookingService,
		cancellationService: cancellationService,
		ticketService:       ticketService,
		logger:              logger,
	}
}

// LockUnits holds a batch of units - POST /api/v1/bookings/lock
func (h *BookingHandler) LockUnits(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	resp, err := h.lockService.LockUnits(user.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReleaseLocks abandons held units - DELETE /api/v1/bookings/lock
func (h *BookingHandler) ReleaseLocks(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scheduleID := c.Query("schedule_id")
	date := c.Query("date")
	if scheduleID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "schedule_id and date are required"})
		return
	}

	released, err := h.lockService.ReleaseLocks(user.UserID, scheduleID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

// Finalize converts held units into a booking - POST /api/v1/bookings
func (h *BookingHandler) Finalize(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.FinalizeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	detail, err := h.bookingService.FinalizeBooking(user.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// List returns the caller's bookings - GET /api/v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.bookingService.ListBookings(user.UserID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// Get returns one booking - GET /api/v1/bookings/:reference
func (h *BookingHandler) Get(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	detail, err := h.bookingService.GetBooking(c.Param("reference"), user.UserID, user.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Cancel cancels a booking and computes the refund -
// POST /api/v1/bookings/:reference/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	resp, err := h.cancellationService.CancelBooking(c.Param("reference"), user.UserID, user.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket streams the booking's PDF ticket -
// GET /api/v1/bookings/:reference/ticket
func (h *BookingHandler) Ticket(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	body, filename, err := h.ticketService.GenerateTicket(c.Param("reference"), user.UserID, user.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
