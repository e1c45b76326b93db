package testutil_test

import (
	"testing"
	"time"

	"hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "periods", "categories", "transactions", "income_sources", "savings_goals"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a generated ID")
	}

	now := time.Now()
	period := testutil.CreateTestPeriod(t, db, user.ID, now)
	if !period.Covers(now) {
		t.Errorf("period %d-%02d should cover %v", period.Year, period.Month, now)
	}

	category := testutil.CreateTestCategory(t, db, period.ID, "groceries", 40000)
	if category.IsCustom {
		t.Error("groceries should be created as a core category")
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, period.ID, "groceries", 1000)
	if tx.CategoryName == nil || *tx.CategoryName != "groceries" {
		t.Errorf("expected category name groceries, got %v", tx.CategoryName)
	}

	source := testutil.CreateTestIncomeSource(t, db, user.ID, 450000, models.FrequencyMonthly)
	if source.Frequency != models.FrequencyMonthly {
		t.Errorf("expected monthly frequency, got %s", source.Frequency)
	}

	goal := testutil.CreateTestGoal(t, db, user.ID, 100000, 25000)
	if goal.Remaining() != 75000 {
		t.Errorf("expected 75000 remaining, got %d", goal.Remaining())
	}

	ef := testutil.CreateTestEmergencyFund(t, db, user.ID, 600000, 300000)
	if ef.Category != models.EmergencyFundCategory {
		t.Errorf("expected emergency fund category, got %s", ef.Category)
	}
}

func TestActivePeriodIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	now := time.Now()
	testutil.CreateTestPeriod(t, db, user.ID, now)

	start, end := models.MonthBounds(now.AddDate(0, 1, 0))
	dup := &models.Period{
		UserID:    user.ID,
		Year:      start.Year(),
		Month:     int(start.Month()),
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	if err := db.Create(dup).Error; err == nil {
		t.Fatal("expected second active period for the same user to be rejected")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrPeriodNotFound, "custom message")
	testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
