package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/services"
)

// GoalHandler handles savings-goal requests.
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the request payload for creating a savings
// goal.
type CreateGoalRequest struct {
	Name                string              `json:"name" binding:"required,min=1,max=100"`
	TargetAmount        int64               `json:"target_amount" binding:"required,gt=0"`
	Deadline            *time.Time          `json:"deadline"`
	Priority            models.GoalPriority `json:"priority" binding:"omitempty,goal_priority"`
	MonthlyContribution *int64              `json:"monthly_contribution" binding:"omitempty,gt=0"`
	Category            string              `json:"category" binding:"omitempty,max=100"`
}

// UpdateGoalRequest represents the request payload for editing a goal.
type UpdateGoalRequest struct {
	Name         *string              `json:"name" binding:"omitempty,min=1,max=100"`
	TargetAmount *int64               `json:"target_amount" binding:"omitempty,gt=0"`
	Deadline     *time.Time           `json:"deadline"`
	Priority     *models.GoalPriority `json:"priority" binding:"omitempty,goal_priority"`
	IsActive     *bool                `json:"is_active"`
}

// UpdateProgressRequest represents the request payload for setting goal
// progress.
type UpdateProgressRequest struct {
	CurrentAmount int64 `json:"current_amount" binding:"gte=0"`
}

// CreateGoal creates a savings goal.
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.CreateGoal(userID, req.Name, req.TargetAmount, req.Deadline, req.Priority, req.MonthlyContribution, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// ListGoals lists the user's savings goals.
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	activeOnly := c.Query("active") == "true"
	goals, err := h.goalService.GetUserGoals(userID, activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// UpdateGoal edits a savings goal.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, c.Param("id"), req.Name, req.TargetAmount, req.Deadline, req.Priority, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateProgress sets a goal's current amount.
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoalProgress(userID, c.Param("id"), req.CurrentAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal removes a savings goal.
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
