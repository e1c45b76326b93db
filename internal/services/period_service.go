package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/models"
	"hearth/internal/pagination"
)

// periodService maintains the one-active-period-per-user invariant and
// drives month rollover.
type periodService struct {
	db         *gorm.DB
	categories CategoryServicer
}

// NewPeriodService creates a new PeriodServicer.
func NewPeriodService(db *gorm.DB, categories CategoryServicer) PeriodServicer {
	return &periodService{db: db, categories: categories}
}

// ResolveActivePeriod returns the user's period for the calendar month of
// now, creating or rolling one over as needed. The flow is linear: one
// lookup, at most one recovery reactivation, at most one creation attempt.
//
// Month boundaries are wall-clock year+month equality, not elapsed days, so
// a period is always exactly one calendar month.
func (s *periodService) ResolveActivePeriod(userID string, now time.Time) (*models.Period, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var active models.Period
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&active).Error
	if err == nil {
		if active.Covers(now) {
			return &active, nil
		}
		return s.rollOver(userID, &active, now)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.StoreOp("get active period", err)
	}

	// No active period. If any period exists, reactivate the most recently
	// created one instead of creating a new one; this recovers from a
	// missing-active-flag anomaly without risking duplicate creation on a
	// transient read error.
	var recent models.Period
	err = s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&recent).Error
	switch {
	case err == nil:
		if uerr := s.db.Model(&recent).Update("is_active", true).Error; uerr != nil {
			if errors.Is(uerr, gorm.ErrDuplicatedKey) {
				// Someone else activated a period first.
				return s.rereadActive(userID, uerr)
			}
			return nil, apperrors.StoreOp("reactivate period", uerr)
		}
		recent.IsActive = true
		if recent.Covers(now) {
			return &recent, nil
		}
		return s.rollOver(userID, &recent, now)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createFirst(userID, now)
	default:
		return nil, apperrors.StoreOp("get most recent period", err)
	}
}

// rollOver supersedes prev with a fresh period for now's month and carries
// category allocations forward. Deactivate-then-create ordering: the
// partial unique index forbids two active periods even transiently.
func (s *periodService) rollOver(userID string, prev *models.Period, now time.Time) (*models.Period, error) {
	start, end := models.MonthBounds(now)
	next := &models.Period{
		UserID:    userID,
		Year:      now.Year(),
		Month:     int(now.Month()),
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Period{}).Where("id = ?", prev.ID).
			Update("is_active", false).Error; err != nil {
			return apperrors.StoreOp("deactivate period", err)
		}
		if err := tx.Create(next).Error; err != nil {
			return err
		}
		return s.categories.CarryOver(tx, prev.ID, next.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent caller won the race; their period is the active
			// one now.
			return s.rereadActive(userID, err)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.StoreOp("create period", err)
	}

	logger.Get().Infow("rolled over budget period",
		"user_id", userID,
		"from", prev.ID,
		"to", next.ID,
		"year", next.Year,
		"month", next.Month,
	)
	return next, nil
}

// createFirst creates a user's very first period and seeds the core
// category set.
func (s *periodService) createFirst(userID string, now time.Time) (*models.Period, error) {
	start, end := models.MonthBounds(now)
	period := &models.Period{
		UserID:    userID,
		Year:      now.Year(),
		Month:     int(now.Month()),
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(period).Error; err != nil {
			return err
		}
		return s.categories.SeedCoreCategories(tx, period.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.rereadActive(userID, err)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.StoreOp("create first period", err)
	}
	return period, nil
}

// rereadActive fetches the active period created by a concurrent caller.
// The uniqueness violation is recovered here, never surfaced to the user.
func (s *periodService) rereadActive(userID string, cause error) (*models.Period, error) {
	var active models.Period
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		First(&active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrActivePeriodConflict, errors.Join(cause, err))
	}
	return &active, nil
}

// GetActivePeriod returns the currently active period without creating one.
func (s *periodService) GetActivePeriod(userID string) (*models.Period, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var active models.Period
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&active).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPeriodNotFound
		}
		return nil, apperrors.StoreOp("get active period", err)
	}
	return &active, nil
}

// UpdateTotalBudget edits the active period's total budget. Superseded
// periods are immutable.
func (s *periodService) UpdateTotalBudget(userID, periodID string, totalBudget int64) (*models.Period, error) {
	var period models.Period
	if err := s.db.Where("id = ? AND user_id = ?", periodID, userID).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPeriodNotFound
		}
		return nil, apperrors.StoreOp("get period", err)
	}
	if !period.IsActive {
		return nil, apperrors.ErrPeriodNotEditable
	}

	if err := s.db.Model(&period).Update("total_budget", totalBudget).Error; err != nil {
		return nil, apperrors.StoreOp("update total budget", err)
	}
	period.TotalBudget = &totalBudget
	return &period, nil
}

// ListInactivePeriods returns superseded periods, newest first.
func (s *periodService) ListInactivePeriods(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Period], error) {
	page.Defaults()

	base := s.db.Model(&models.Period{}).Where("user_id = ? AND is_active = ?", userID, false)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.StoreOp("count periods", err)
	}

	var periods []models.Period
	if err := base.Scopes(pagination.Paginate(page)).
		Order("year DESC, month DESC").
		Find(&periods).Error; err != nil {
		return nil, apperrors.StoreOp("list periods", err)
	}

	result := pagination.NewPageResponse(periods, page.Page, page.PageSize, totalItems)
	return &result, nil
}
