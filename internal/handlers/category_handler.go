package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/services"
)

// CategoryHandler handles category allocation requests against the active
// period.
type CategoryHandler struct {
	periodService   services.PeriodServicer
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(periodService services.PeriodServicer, categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{periodService: periodService, categoryService: categoryService}
}

// UpsertCategoryRequest represents the request payload for creating or
// updating a category allocation.
type UpsertCategoryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Allocated *int64 `json:"allocated" binding:"omitempty,gte=0"`
	Color     string `json:"color" binding:"omitempty,hex_color"`
	Icon      string `json:"icon" binding:"omitempty,max=50"`
}

// ListCategories lists the active period's categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
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

	categories, err := h.categoryService.ListByPeriod(period.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// UpsertCategory creates or updates a category in the active period.
func (h *CategoryHandler) UpsertCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	period, err := h.periodService.GetActivePeriod(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.Upsert(userID, period.ID, req.Name, req.Allocated, req.Color, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a custom category from the active period. Core
// categories cannot be deleted.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := c.Param("name")
	if name == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required"))
		return
	}

	period, err := h.periodService.GetActivePeriod(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.Delete(userID, period.ID, name); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": name})
}
