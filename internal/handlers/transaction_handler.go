package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/middleware"
)

// TransactionHandler exposes the caller's payment history.
type TransactionHandler struct {
	txnRepo *database.TransactionRepository
	logger  *logrus.Logger
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(txnRepo *database.TransactionRepository, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{txnRepo: txnRepo, logger: logger}
}

// List returns the caller's charges and refunds, newest first -
// GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	txns, err := h.txnRepo.ListByUser(user.UserID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns)})
}
