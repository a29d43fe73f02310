package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500 with a generic body so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var conflict *models.ConflictError
	var validation *models.ValidationError
	switch {
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "conflict",
			"message": conflict.Message,
			"units":   conflict.Units,
		})
	case models.IsInvalidState(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_state", "message": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "something went wrong"})
	}
}
