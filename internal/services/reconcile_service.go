package services

import (
	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/models"
)

// reconcileService recomputes per-category spend from the ledger and
// repairs cached totals that have drifted. Both operations are idempotent
// and never touch allocations; they fail only on underlying I/O errors.
type reconcileService struct {
	db *gorm.DB
}

// NewReconcileService creates a new ReconcileServicer.
func NewReconcileService(db *gorm.DB) ReconcileServicer {
	return &reconcileService{db: db}
}

type categorySum struct {
	CategoryName string
	Total        int64
}

// actualSpend returns the ledger-derived spend per category name for the
// period, plus the total carried by transactions with no category.
func (s *reconcileService) actualSpend(db *gorm.DB, periodID string) (map[string]int64, int64, error) {
	var sums []categorySum
	err := db.Model(&models.Transaction{}).
		Select("category_name, COALESCE(SUM(amount), 0) AS total").
		Where("period_id = ? AND category_name IS NOT NULL", periodID).
		Group("category_name").
		Scan(&sums).Error
	if err != nil {
		return nil, 0, apperrors.StoreOp("sum transactions by category", err)
	}

	totals := make(map[string]int64, len(sums))
	for _, sum := range sums {
		totals[sum.CategoryName] = sum.Total
	}

	var uncategorized int64
	err = db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("period_id = ? AND category_name IS NULL", periodID).
		Scan(&uncategorized).Error
	if err != nil {
		return nil, 0, apperrors.StoreOp("sum uncategorized transactions", err)
	}

	return totals, uncategorized, nil
}

// Recalculate writes the corrected spent value for every category whose
// cache disagrees with the ledger. Categories with no matching transactions
// get zero. Safe to run repeatedly; a second run is a no-op.
func (s *reconcileService) Recalculate(periodID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		totals, _, err := s.actualSpend(tx, periodID)
		if err != nil {
			return err
		}

		var categories []models.Category
		if err := tx.Where("period_id = ?", periodID).Find(&categories).Error; err != nil {
			return apperrors.StoreOp("list categories", err)
		}

		for _, category := range categories {
			actual := totals[category.Name]
			if category.Spent == actual {
				continue
			}
			if err := tx.Model(&models.Category{}).
				Where("id = ?", category.ID).
				Update("spent", actual).Error; err != nil {
				return apperrors.StoreOp("repair category spent", err)
			}
			logger.Get().Infow("repaired drifted category spend",
				"period_id", periodID,
				"category", category.Name,
				"stored", category.Spent,
				"actual", actual,
			)
		}
		return nil
	})
}

// DiffReport is a pure read comparing cached and recomputed spend per
// category. After Recalculate, every entry reports IsCorrect.
func (s *reconcileService) DiffReport(periodID string) (*DriftReport, error) {
	totals, uncategorized, err := s.actualSpend(s.db, periodID)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.Where("period_id = ?", periodID).Order("name").Find(&categories).Error; err != nil {
		return nil, apperrors.StoreOp("list categories", err)
	}

	report := &DriftReport{
		PeriodID:           periodID,
		Categories:         make([]CategoryDiff, 0, len(categories)),
		UncategorizedSpent: uncategorized,
	}
	for _, category := range categories {
		actual := totals[category.Name]
		report.Categories = append(report.Categories, CategoryDiff{
			Category:    category.Name,
			Allocated:   category.Allocated,
			StoredSpent: category.Spent,
			ActualSpent: actual,
			IsCorrect:   category.Spent == actual,
		})
	}
	return report, nil
}
