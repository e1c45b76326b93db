package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
)

// incomeService handles income-source CRUD.
type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

// CreateIncomeSource records a new income source.
func (s *incomeService) CreateIncomeSource(userID, name string, amount int64, frequency models.IncomeFrequency, startDate time.Time) (*models.IncomeSource, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if startDate.IsZero() {
		startDate = time.Now()
	}

	source := &models.IncomeSource{
		UserID:    userID,
		Name:      name,
		Amount:    amount,
		Frequency: frequency,
		IsActive:  true,
		StartDate: startDate,
	}
	if err := s.db.Create(source).Error; err != nil {
		return nil, apperrors.StoreOp("create income source", err)
	}
	return source, nil
}

// GetUserIncomeSources returns all income sources for the user.
func (s *incomeService) GetUserIncomeSources(userID string) ([]models.IncomeSource, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var sources []models.IncomeSource
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&sources).Error; err != nil {
		return nil, apperrors.StoreOp("list income sources", err)
	}
	return sources, nil
}

// UpdateIncomeSource updates an income source's fields.
func (s *incomeService) UpdateIncomeSource(userID, sourceID string, name *string, amount *int64, frequency *models.IncomeFrequency, isActive *bool) (*models.IncomeSource, error) {
	source, err := s.getOwned(userID, sourceID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if amount != nil {
		updates["amount"] = *amount
	}
	if frequency != nil {
		updates["frequency"] = *frequency
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(source).Updates(updates).Error; err != nil {
			return nil, apperrors.StoreOp("update income source", err)
		}
	}
	return source, nil
}

// DeleteIncomeSource soft-deletes an income source.
func (s *incomeService) DeleteIncomeSource(userID, sourceID string) error {
	source, err := s.getOwned(userID, sourceID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(source).Error; err != nil {
		return apperrors.StoreOp("delete income source", err)
	}
	return nil
}

func (s *incomeService) getOwned(userID, sourceID string) (*models.IncomeSource, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var source models.IncomeSource
	if err := s.db.Where("id = ? AND user_id = ?", sourceID, userID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeSourceNotFound
		}
		return nil, apperrors.StoreOp("get income source", err)
	}
	return &source, nil
}
