package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hearth/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPeriod creates an active period for the month containing at.
func CreateTestPeriod(t *testing.T, db *gorm.DB, userID string, at time.Time) *models.Period {
	t.Helper()
	return CreateTestPeriodActive(t, db, userID, at, true)
}

// CreateTestPeriodActive creates a period for the month containing at, with
// the given active flag.
func CreateTestPeriodActive(t *testing.T, db *gorm.DB, userID string, at time.Time, active bool) *models.Period {
	t.Helper()

	start, end := models.MonthBounds(at)
	period := &models.Period{
		UserID:    userID,
		Year:      at.Year(),
		Month:     int(at.Month()),
		StartDate: start,
		EndDate:   end,
		IsActive:  active,
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test period: %v", err)
	}
	return period
}

// CreateTestCategory creates a custom category with the given allocation (in cents).
func CreateTestCategory(t *testing.T, db *gorm.DB, periodID, name string, allocated int64) *models.Category {
	t.Helper()

	category := &models.Category{
		PeriodID:  periodID,
		Name:      name,
		Allocated: allocated,
		IsCustom:  !models.IsCoreCategoryName(name),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a categorized transaction with the given
// amount (in cents). Pass an empty category name for uncategorized spend.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, periodID, categoryName string, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		PeriodID:    periodID,
		Amount:      amount,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        time.Now(),
	}
	if categoryName != "" {
		tx.CategoryName = &categoryName
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestIncomeSource creates an active income source (amount in cents).
func CreateTestIncomeSource(t *testing.T, db *gorm.DB, userID string, amount int64, freq models.IncomeFrequency) *models.IncomeSource {
	t.Helper()

	source := &models.IncomeSource{
		UserID:    userID,
		Name:      fmt.Sprintf("Test Income %d", nextID()),
		Amount:    amount,
		Frequency: freq,
		IsActive:  true,
		StartDate: time.Now(),
	}
	if err := db.Create(source).Error; err != nil {
		t.Fatalf("failed to create test income source: %v", err)
	}
	return source
}

// CreateTestGoal creates an active savings goal (amounts in cents).
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target, current int64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  target,
		CurrentAmount: current,
		Priority:      models.GoalPriorityMedium,
		IsActive:      true,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestEmergencyFund creates an active emergency-fund goal with the
// given balance (in cents).
func CreateTestEmergencyFund(t *testing.T, db *gorm.DB, userID string, target, current int64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:        userID,
		Name:          "Emergency Fund",
		TargetAmount:  target,
		CurrentAmount: current,
		Priority:      models.GoalPriorityHigh,
		IsActive:      true,
		Category:      models.EmergencyFundCategory,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test emergency fund: %v", err)
	}
	return goal
}
