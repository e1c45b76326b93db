// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"hearth/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.Period{},
	&models.Category{},
	&models.Transaction{},
	&models.IncomeSource{},
	&models.SavingsGoal{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey,
// matching the production postgres configuration.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// AutoMigrate cannot express the partial index that enforces one
	// active period per user; create it directly.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_periods_user_active
		ON periods(user_id) WHERE is_active AND deleted_at IS NULL`).Error
	if err != nil {
		t.Fatalf("failed to create active-period index: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
