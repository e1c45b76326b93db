package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// PeriodHandler exposes the period engine: resolving the active period,
// editing its budget, running repairs, and reading drift reports.
type PeriodHandler struct {
	periodService    services.PeriodServicer
	categoryService  services.CategoryServicer
	reconcileService services.ReconcileServicer
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodService services.PeriodServicer, categoryService services.CategoryServicer, reconcileService services.ReconcileServicer) *PeriodHandler {
	return &PeriodHandler{
		periodService:    periodService,
		categoryService:  categoryService,
		reconcileService: reconcileService,
	}
}

// UpdateBudgetRequest represents the request payload for editing the active
// period's total budget.
type UpdateBudgetRequest struct {
	TotalBudget int64 `json:"total_budget" binding:"required,gte=0"`
}

// GetCurrentPeriod resolves (and if needed creates or rolls over) the
// user's period for the current month, returning it with its categories.
func (h *PeriodHandler) GetCurrentPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.periodService.ResolveActivePeriod(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.ListByPeriod(period.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period, "categories": categories})
}

// UpdateBudget edits the active period's total budget.
func (h *PeriodHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	period, err := h.periodService.GetActivePeriod(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := h.periodService.UpdateTotalBudget(userID, period.ID, req.TotalBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": updated})
}

// ListHistory returns superseded periods, newest first.
func (h *PeriodHandler) ListHistory(c *gin.Context) {
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

	result, err := h.periodService.ListInactivePeriods(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Repair runs the two repair operations on the active period: reinsert
// missing core categories and recalculate spent caches from the ledger.
func (h *PeriodHandler) Repair(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.periodService.GetActivePeriod(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.EnsureCoreCategories(period.ID); err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.reconcileService.Recalculate(period.ID); err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reconcileService.DiffReport(period.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Drift returns the drift diagnostic for the active period without
// repairing anything.
func (h *PeriodHandler) Drift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.periodService.GetActivePeriod(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reconcileService.DiffReport(period.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
