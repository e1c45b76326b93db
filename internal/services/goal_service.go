package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
)

// goalService handles savings-goal CRUD and progress updates.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// CreateGoal creates a new savings goal.
func (s *goalService) CreateGoal(userID, name string, targetAmount int64, deadline *time.Time, priority models.GoalPriority, monthlyContribution *int64, category string) (*models.SavingsGoal, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if targetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if priority == "" {
		priority = models.GoalPriorityMedium
	}

	goal := &models.SavingsGoal{
		UserID:              userID,
		Name:                name,
		TargetAmount:        targetAmount,
		Deadline:            deadline,
		Priority:            priority,
		MonthlyContribution: monthlyContribution,
		IsActive:            true,
		Category:            category,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.StoreOp("create savings goal", err)
	}
	return goal, nil
}

// GetUserGoals returns the user's savings goals, optionally active only.
func (s *goalService) GetUserGoals(userID string, activeOnly bool) ([]models.SavingsGoal, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	base := s.db.Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("is_active = ?", true)
	}
	var goals []models.SavingsGoal
	if err := base.Order("priority DESC, created_at").Find(&goals).Error; err != nil {
		return nil, apperrors.StoreOp("list savings goals", err)
	}
	return goals, nil
}

// UpdateGoalProgress sets a goal's current amount.
func (s *goalService) UpdateGoalProgress(userID, goalID string, currentAmount int64) (*models.SavingsGoal, error) {
	goal, err := s.getOwned(userID, goalID)
	if err != nil {
		return nil, err
	}
	if currentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount cannot be negative")
	}

	if err := s.db.Model(goal).Update("current_amount", currentAmount).Error; err != nil {
		return nil, apperrors.StoreOp("update goal progress", err)
	}
	goal.CurrentAmount = currentAmount
	return goal, nil
}

// UpdateGoal updates a goal's fields.
func (s *goalService) UpdateGoal(userID, goalID string, name *string, targetAmount *int64, deadline *time.Time, priority *models.GoalPriority, isActive *bool) (*models.SavingsGoal, error) {
	goal, err := s.getOwned(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if targetAmount != nil {
		if *targetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
		}
		updates["target_amount"] = *targetAmount
	}
	if deadline != nil {
		updates["deadline"] = deadline
	}
	if priority != nil {
		updates["priority"] = *priority
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.StoreOp("update savings goal", err)
		}
	}
	return goal, nil
}

// DeleteGoal soft-deletes a savings goal.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.getOwned(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.StoreOp("delete savings goal", err)
	}
	return nil
}

func (s *goalService) getOwned(userID, goalID string) (*models.SavingsGoal, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var goal models.SavingsGoal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.StoreOp("get savings goal", err)
	}
	return &goal, nil
}
