package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/repository"
	"github.com/sirupsen/logrus"
)

// TransactionHandler handles transaction history and ratings
type TransactionHandler struct {
	transactionRepository *repository.TransactionRepository
	logger                *logrus.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionRepository *repository.TransactionRepository, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{transactionRepository: transactionRepository, logger: logger}
}

// GetMy handles GET /api/Transaction/GetMy
func (h *TransactionHandler) GetMy(c *gin.Context) {
	c.JSON(http.StatusOK, h.transactionRepository.ListByUser(currentUserID(c)))
}

// CreateRating handles POST /api/Rating/Create
func (h *TransactionHandler) CreateRating(c *gin.Context) {
	userID := currentUserID(c)

	var req models.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", "INVALID_REQUEST")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), "INVALID_RATING")
		return
	}

	tx, err := h.transactionRepository.Rate(req.TransactionID, userID, req.RatingValue)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "Transaction not found", "TRANSACTION_NOT_FOUND")
		return
	case errors.Is(err, repository.ErrAlreadyRated):
		respondError(c, http.StatusConflict, "conflict", "Transaction already rated", "ALREADY_RATED")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "rating_failed", "Failed to save rating", "")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"rating_value":   req.RatingValue,
	}).Info("Transaction rated")

	c.JSON(http.StatusOK, tx)
}
