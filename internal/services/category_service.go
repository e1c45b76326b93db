package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/models"
	"hearth/internal/realtime"
)

// categoryService handles category rows, carry-over, and core-category
// seeding.
type categoryService struct {
	db        *gorm.DB
	publisher EventPublisher
}

// NewCategoryService creates a new CategoryServicer. publisher may be nil.
func NewCategoryService(db *gorm.DB, publisher EventPublisher) CategoryServicer {
	return &categoryService{db: db, publisher: publisher}
}

// ListByPeriod returns all categories for a period.
func (s *categoryService) ListByPeriod(periodID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("period_id = ?", periodID).Order("name").Find(&categories).Error; err != nil {
		return nil, apperrors.StoreOp("list categories", err)
	}
	return categories, nil
}

// Upsert creates or updates the category named name in the period. Only
// fields that are provided change; spent is never written here, it belongs
// to the ledger and the reconciler.
func (s *categoryService) Upsert(userID, periodID, name string, allocated *int64, color, icon string) (*models.Category, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var category models.Category
	err := s.db.Where("period_id = ? AND name = ?", periodID, name).First(&category).Error
	switch {
	case err == nil:
		updates := make(map[string]interface{})
		if allocated != nil {
			updates["allocated"] = *allocated
		}
		if color != "" {
			updates["color"] = color
		}
		if icon != "" {
			updates["icon"] = icon
		}
		if len(updates) > 0 {
			if err := s.db.Model(&category).Updates(updates).Error; err != nil {
				return nil, apperrors.StoreOp("update category", err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = models.Category{
			PeriodID: periodID,
			Name:     name,
			Color:    color,
			Icon:     icon,
			IsCustom: !models.IsCoreCategoryName(name),
		}
		if allocated != nil {
			category.Allocated = *allocated
		}
		if err := s.db.Create(&category).Error; err != nil {
			return nil, apperrors.StoreOp("create category", err)
		}
	default:
		return nil, apperrors.StoreOp("get category", err)
	}

	s.publish(realtime.Event{Entity: realtime.EntityCategory, Op: realtime.OpUpdate, Category: &category})
	return &category, nil
}

// Delete removes a custom category. Core categories are never deletable.
func (s *categoryService) Delete(userID, periodID, name string) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	if models.IsCoreCategoryName(name) {
		return apperrors.ErrCoreCategory
	}

	var category models.Category
	if err := s.db.Where("period_id = ? AND name = ?", periodID, name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.StoreOp("get category", err)
	}

	if err := s.db.Delete(&category).Error; err != nil {
		return apperrors.StoreOp("delete category", err)
	}

	s.publish(realtime.Event{Entity: realtime.EntityCategory, Op: realtime.OpDelete, Category: &category})
	return nil
}

// CarryOver copies every category row from the outgoing period into the new
// one verbatim except spent, which is reset to zero. Custom categories are
// carried identically to core ones.
func (s *categoryService) CarryOver(tx *gorm.DB, fromPeriodID, toPeriodID string) error {
	var previous []models.Category
	if err := tx.Where("period_id = ?", fromPeriodID).Find(&previous).Error; err != nil {
		return apperrors.StoreOp("list previous categories", err)
	}

	for _, prev := range previous {
		next := models.Category{
			PeriodID:  toPeriodID,
			Name:      prev.Name,
			Allocated: prev.Allocated,
			Spent:     0,
			Color:     prev.Color,
			Icon:      prev.Icon,
			IsCustom:  prev.IsCustom,
		}
		if err := tx.Create(&next).Error; err != nil {
			return apperrors.StoreOp("carry over category", err)
		}
	}
	return nil
}

// SeedCoreCategories creates one zero-allocation category per core name.
func (s *categoryService) SeedCoreCategories(tx *gorm.DB, periodID string) error {
	for _, core := range models.CoreCategories {
		category := models.Category{
			PeriodID: periodID,
			Name:     core.Name,
			Color:    core.Color,
			Icon:     core.Icon,
			IsCustom: false,
		}
		if err := tx.Create(&category).Error; err != nil {
			return apperrors.StoreOp("seed core category", err)
		}
	}
	return nil
}

// EnsureCoreCategories is a repair: it inserts only the core categories
// missing from an existing period and leaves present rows untouched.
// Calling it twice produces no duplicates and no altered data.
func (s *categoryService) EnsureCoreCategories(periodID string) error {
	var existing []models.Category
	if err := s.db.Where("period_id = ?", periodID).Find(&existing).Error; err != nil {
		return apperrors.StoreOp("list categories", err)
	}

	present := make(map[string]bool, len(existing))
	for _, c := range existing {
		present[c.Name] = true
	}

	for _, core := range models.CoreCategories {
		if present[core.Name] {
			continue
		}
		category := models.Category{
			PeriodID: periodID,
			Name:     core.Name,
			Color:    core.Color,
			Icon:     core.Icon,
			IsCustom: false,
		}
		if err := s.db.Create(&category).Error; err != nil {
			return apperrors.StoreOp("insert missing core category", err)
		}
		logger.Get().Infow("repaired missing core category",
			"period_id", periodID, "name", core.Name)
	}
	return nil
}

func (s *categoryService) publish(ev realtime.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), ev); err != nil {
		logger.Get().Warnw("failed to publish change event",
			"entity", ev.Entity, "op", ev.Op, "error", err)
	}
}
