package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/services"
)

// IncomeHandler handles income-source requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeSourceRequest represents the request payload for adding an
// income source.
type CreateIncomeSourceRequest struct {
	Name      string                 `json:"name" binding:"required,min=1,max=100"`
	Amount    int64                  `json:"amount" binding:"required,gt=0"`
	Frequency models.IncomeFrequency `json:"frequency" binding:"required,income_frequency"`
	StartDate time.Time              `json:"start_date"`
}

// UpdateIncomeSourceRequest represents the request payload for editing an
// income source.
type UpdateIncomeSourceRequest struct {
	Name      *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Amount    *int64                  `json:"amount" binding:"omitempty,gt=0"`
	Frequency *models.IncomeFrequency `json:"frequency" binding:"omitempty,income_frequency"`
	IsActive  *bool                   `json:"is_active"`
}

// CreateIncomeSource adds an income source.
func (h *IncomeHandler) CreateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.incomeService.CreateIncomeSource(userID, req.Name, req.Amount, req.Frequency, req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"income_source": source})
}

// ListIncomeSources lists the user's income sources.
func (h *IncomeHandler) ListIncomeSources(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sources, err := h.incomeService.GetUserIncomeSources(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_sources": sources})
}

// UpdateIncomeSource edits an income source.
func (h *IncomeHandler) UpdateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.incomeService.UpdateIncomeSource(userID, c.Param("id"), req.Name, req.Amount, req.Frequency, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_source": source})
}

// DeleteIncomeSource removes an income source.
func (h *IncomeHandler) DeleteIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncomeSource(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
