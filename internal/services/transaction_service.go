package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/realtime"
)

// transactionService owns ledger writes. Every write adjusts the cached
// category spent total inside the same store transaction, so the cache can
// only drift through partial failures elsewhere — which the reconciler
// repairs.
type transactionService struct {
	db        *gorm.DB
	periods   PeriodServicer
	publisher EventPublisher
}

// NewTransactionService creates a new TransactionServicer. publisher may be
// nil.
func NewTransactionService(db *gorm.DB, periods PeriodServicer, publisher EventPublisher) TransactionServicer {
	return &transactionService{db: db, periods: periods, publisher: publisher}
}

// CreateTransaction records spend against the user's active period. A
// previously-unseen category name creates a zero-allocation category row.
func (s *transactionService) CreateTransaction(
	userID string,
	categoryName *string,
	amount int64,
	description, merchant string,
	date time.Time,
) (*models.Transaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}
	if date.IsZero() {
		date = time.Now()
	}

	period, err := s.periods.ResolveActivePeriod(userID, time.Now())
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:       userID,
		PeriodID:     period.ID,
		CategoryName: categoryName,
		Amount:       amount,
		Description:  description,
		Merchant:     merchant,
		Date:         date,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.StoreOp("create transaction", err)
		}
		return s.adjustSpent(tx, period.ID, categoryName, amount)
	})
	if err != nil {
		return nil, err
	}

	s.publish(realtime.Event{Entity: realtime.EntityTransaction, Op: realtime.OpInsert, Transaction: transaction})
	s.publishCategory(period.ID, categoryName)
	return transaction, nil
}

// UpdateTransaction edits a ledger row and moves its cached spend between
// categories when the amount or category changes.
func (s *transactionService) UpdateTransaction(
	userID, transactionID string,
	categoryName *string,
	amount *int64,
	description, merchant *string,
	date *time.Time,
) (*models.Transaction, error) {
	transaction, err := s.getOwned(userID, transactionID)
	if err != nil {
		return nil, err
	}

	oldCategory := transaction.CategoryName
	oldAmount := transaction.Amount

	updates := make(map[string]interface{})
	newCategory := oldCategory
	newAmount := oldAmount
	if categoryName != nil {
		if *categoryName == "" {
			newCategory = nil
			updates["category_name"] = nil
		} else {
			newCategory = categoryName
			updates["category_name"] = *categoryName
		}
	}
	if amount != nil {
		if *amount == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
		}
		newAmount = *amount
		updates["amount"] = *amount
	}
	if description != nil {
		updates["description"] = *description
	}
	if merchant != nil {
		updates["merchant"] = *merchant
	}
	if date != nil {
		updates["date"] = *date
	}
	if len(updates) == 0 {
		return transaction, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.StoreOp("update transaction", err)
		}
		if err := s.adjustSpent(tx, transaction.PeriodID, oldCategory, -oldAmount); err != nil {
			return err
		}
		return s.adjustSpent(tx, transaction.PeriodID, newCategory, newAmount)
	})
	if err != nil {
		return nil, err
	}

	transaction.CategoryName = newCategory
	transaction.Amount = newAmount

	s.publish(realtime.Event{Entity: realtime.EntityTransaction, Op: realtime.OpUpdate, Transaction: transaction})
	s.publishCategory(transaction.PeriodID, oldCategory)
	s.publishCategory(transaction.PeriodID, newCategory)
	return transaction, nil
}

// DeleteTransaction removes a ledger row and releases its cached spend.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.getOwned(userID, transactionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.StoreOp("delete transaction", err)
		}
		return s.adjustSpent(tx, transaction.PeriodID, transaction.CategoryName, -transaction.Amount)
	})
	if err != nil {
		return err
	}

	s.publish(realtime.Event{Entity: realtime.EntityTransaction, Op: realtime.OpDelete, Transaction: transaction})
	s.publishCategory(transaction.PeriodID, transaction.CategoryName)
	return nil
}

// GetPeriodTransactions retrieves a paginated, filtered list of
// transactions for a period, newest first. Superseded periods remain
// queryable.
func (s *transactionService) GetPeriodTransactions(userID, periodID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ? AND period_id = ?", userID, periodID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.StoreOp("count transactions", err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.StoreOp("list transactions", err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Category != nil {
		q = q.Where("category_name = ?", *f.Category)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

func (s *transactionService) getOwned(userID, transactionID string) (*models.Transaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.StoreOp("get transaction", err)
	}
	return &transaction, nil
}

// adjustSpent shifts a category's cached spent total by delta, lazily
// creating the category on first use. A nil category name is uncategorized
// spend and touches no cache.
func (s *transactionService) adjustSpent(tx *gorm.DB, periodID string, categoryName *string, delta int64) error {
	if categoryName == nil || *categoryName == "" {
		return nil
	}

	var category models.Category
	err := tx.Where("period_id = ? AND name = ?", periodID, *categoryName).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{
			PeriodID: periodID,
			Name:     *categoryName,
			IsCustom: !models.IsCoreCategoryName(*categoryName),
		}
		for _, core := range models.CoreCategories {
			if core.Name == *categoryName {
				category.Color = core.Color
				category.Icon = core.Icon
			}
		}
		if err := tx.Create(&category).Error; err != nil {
			return apperrors.StoreOp("create category", err)
		}
	} else if err != nil {
		return apperrors.StoreOp("get category", err)
	}

	if err := tx.Model(&models.Category{}).
		Where("id = ?", category.ID).
		Update("spent", gorm.Expr("spent + ?", delta)).Error; err != nil {
		return apperrors.StoreOp("adjust category spent", err)
	}
	return nil
}

func (s *transactionService) publish(ev realtime.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), ev); err != nil {
		logger.Get().Warnw("failed to publish change event",
			"entity", ev.Entity, "op", ev.Op, "error", err)
	}
}

// publishCategory echoes the current category row after its cache moved.
func (s *transactionService) publishCategory(periodID string, categoryName *string) {
	if s.publisher == nil || categoryName == nil || *categoryName == "" {
		return
	}
	var category models.Category
	if err := s.db.Where("period_id = ? AND name = ?", periodID, *categoryName).First(&category).Error; err != nil {
		return
	}
	s.publish(realtime.Event{Entity: realtime.EntityCategory, Op: realtime.OpUpdate, Category: &category})
}
