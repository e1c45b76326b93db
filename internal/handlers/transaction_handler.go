package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// TransactionHandler handles ledger requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	periodService      services.PeriodServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, periodService services.PeriodServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, periodService: periodService}
}

// CreateTransactionRequest represents the request payload for recording
// spend. Amount is signed cents, positive for an expense.
type CreateTransactionRequest struct {
	CategoryName *string   `json:"category_name" binding:"omitempty,min=1,max=100"`
	Amount       int64     `json:"amount" binding:"required"`
	Description  string    `json:"description" binding:"omitempty,max=500"`
	Merchant     string    `json:"merchant" binding:"omitempty,max=200"`
	Date         time.Time `json:"date"`
}

// UpdateTransactionRequest represents the request payload for editing a
// transaction. A nil field is left unchanged; an empty category name
// uncategorizes the transaction.
type UpdateTransactionRequest struct {
	CategoryName *string    `json:"category_name"`
	Amount       *int64     `json:"amount"`
	Description  *string    `json:"description" binding:"omitempty,max=500"`
	Merchant     *string    `json:"merchant" binding:"omitempty,max=200"`
	Date         *time.Time `json:"date"`
}

// CreateTransaction records a transaction against the active period.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(
		userID, req.CategoryName, req.Amount, req.Description, req.Merchant, req.Date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction edits a transaction.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(
		userID, c.Param("id"), req.CategoryName, req.Amount, req.Description, req.Merchant, req.Date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// ListTransactions lists the active period's transactions with optional
// filters. Pass period_id to query a superseded period's history.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	periodID := c.Query("period_id")
	if periodID == "" {
		period, err := h.periodService.GetActivePeriod(userID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		periodID = period.ID
	}

	var filter services.TransactionFilter
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.FromDate = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.ToDate = &t
		}
	}

	result, err := h.transactionService.GetPeriodTransactions(userID, periodID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
