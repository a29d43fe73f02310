package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
	"github.com/wanderlite/travel-booking-backend/internal/services"
)

// ScheduleHandler handles schedule search and seat map endpoints
type ScheduleHandler struct {
	scheduleRepo *database.ScheduleRepository
	lockService  *services.LockService
	logger       *logrus.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleRepo *database.ScheduleRepository, lockService *services.LockService, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleRepo: scheduleRepo, lockService: lockService, logger: logger}
}

// Search lists open schedules - GET /api/v1/schedules
func (h *ScheduleHandler) Search(c *gin.Context) {
	filter := models.ScheduleSearchFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Limit:       queryInt(c, "limit", 50),
		Offset:      queryInt(c, "offset", 0),
	}
	if raw := c.Query("type"); raw != "" {
		resourceType := models.ResourceType(raw)
		if !resourceType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "unknown resource type"})
			return
		}
		filter.ResourceType = &resourceType
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "date must be YYYY-MM-DD"})
			return
		}
		next := day.Add(24 * time.Hour)
		filter.DateFrom = &day
		filter.DateTo = &next
	}

	schedules, err := h.scheduleRepo.Search(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// Get returns one schedule - GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.scheduleRepo.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// GetUnitMap returns the seat/room map for a travel date -
// GET /api/v1/schedules/:id/units?date=YYYY-MM-DD
func (h *ScheduleHandler) GetUnitMap(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "date query parameter is required"})
		return
	}

	units, err := h.lockService.GetUnitMap(c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units, "travel_date": date})
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
