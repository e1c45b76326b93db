package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/realtime"
)

// EventPublisher pushes change events onto the realtime channel. Services
// treat publishing as best-effort: a failure is logged, never returned.
// Implemented by realtime.Client; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

// PeriodServicer resolves and maintains the single active budget period per
// user.
type PeriodServicer interface {
	ResolveActivePeriod(userID string, now time.Time) (*models.Period, error)
	GetActivePeriod(userID string) (*models.Period, error)
	UpdateTotalBudget(userID, periodID string, totalBudget int64) (*models.Period, error)
	ListInactivePeriods(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Period], error)
}

// CategoryServicer is the category store contract plus the carry-over and
// seeding operations that populate a new period. CarryOver and the seeding
// helpers take a *gorm.DB so the period service can run them inside the
// rollover transaction.
type CategoryServicer interface {
	ListByPeriod(periodID string) ([]models.Category, error)
	Upsert(userID, periodID, name string, allocated *int64, color, icon string) (*models.Category, error)
	Delete(userID, periodID, name string) error
	CarryOver(tx *gorm.DB, fromPeriodID, toPeriodID string) error
	SeedCoreCategories(tx *gorm.DB, periodID string) error
	EnsureCoreCategories(periodID string) error
}

// CategoryDiff compares a category's cached spent figure against the sum
// recomputed from the ledger.
type CategoryDiff struct {
	Category    string `json:"category"`
	Allocated   int64  `json:"allocated"`
	StoredSpent int64  `json:"stored_spent"`
	ActualSpent int64  `json:"actual_spent"`
	IsCorrect   bool   `json:"is_correct"`
}

// DriftReport is the diagnostic output of the reconciler. Uncategorized
// spend belongs to no category row; it is reported here so it is tracked
// rather than silently dropped.
type DriftReport struct {
	PeriodID           string         `json:"period_id"`
	Categories         []CategoryDiff `json:"categories"`
	UncategorizedSpent int64          `json:"uncategorized_spent"`
}

// ReconcileServicer repairs drift between the transaction ledger and the
// cached per-category spent totals.
type ReconcileServicer interface {
	Recalculate(periodID string) error
	DiffReport(periodID string) (*DriftReport, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Category  *string
	MinAmount *int64
	MaxAmount *int64
}

// TransactionServicer is the ledger write/read contract. Writes keep the
// category spent cache consistent within the same store transaction.
type TransactionServicer interface {
	CreateTransaction(userID string, categoryName *string, amount int64, description, merchant string, date time.Time) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, categoryName *string, amount *int64, description, merchant *string, date *time.Time) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetPeriodTransactions(userID, periodID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// VarianceStatus classifies spent against allocated with a ±5% tolerance
// band.
type VarianceStatus string

const (
	VarianceUnder    VarianceStatus = "under"
	VarianceOver     VarianceStatus = "over"
	VarianceOnTarget VarianceStatus = "on-target"
)

// CategoryVariance is one category's spent-vs-allocated comparison.
type CategoryVariance struct {
	Name      string         `json:"name"`
	Allocated int64          `json:"allocated"`
	Spent     int64          `json:"spent"`
	Variance  int64          `json:"variance"`
	Status    VarianceStatus `json:"status"`
}

// Summary aggregates a user's monthly financial position. All amounts are
// cents.
type Summary struct {
	TotalMonthlyIncome   int64              `json:"total_monthly_income"`
	TotalMonthlyExpenses int64              `json:"total_monthly_expenses"`
	TotalSavingsTarget   int64              `json:"total_savings_target"`
	NetCashFlow          int64              `json:"net_cash_flow"`
	Variances            []CategoryVariance `json:"variances"`
}

// HealthScore is the bounded financial-health result with explanatory
// recommendations in priority order.
type HealthScore struct {
	Score              int      `json:"score"`
	IncomeExpenseRatio float64  `json:"income_expense_ratio"`
	SavingsRate        float64  `json:"savings_rate"`
	EmergencyFundWeeks float64  `json:"emergency_fund_weeks"`
	Recommendations    []string `json:"recommendations"`
}

// HealthServicer derives summaries and health scores from income, spend,
// and goal data.
type HealthServicer interface {
	GetSummary(userID string, now time.Time) (*Summary, error)
	GetHealthScore(userID string, now time.Time) (*HealthScore, error)
}

// IncomeServicer manages income sources.
type IncomeServicer interface {
	CreateIncomeSource(userID, name string, amount int64, frequency models.IncomeFrequency, startDate time.Time) (*models.IncomeSource, error)
	GetUserIncomeSources(userID string) ([]models.IncomeSource, error)
	UpdateIncomeSource(userID, sourceID string, name *string, amount *int64, frequency *models.IncomeFrequency, isActive *bool) (*models.IncomeSource, error)
	DeleteIncomeSource(userID, sourceID string) error
}

// GoalServicer manages savings goals.
type GoalServicer interface {
	CreateGoal(userID, name string, targetAmount int64, deadline *time.Time, priority models.GoalPriority, monthlyContribution *int64, category string) (*models.SavingsGoal, error)
	GetUserGoals(userID string, activeOnly bool) ([]models.SavingsGoal, error)
	UpdateGoalProgress(userID, goalID string, currentAmount int64) (*models.SavingsGoal, error)
	UpdateGoal(userID, goalID string, name *string, targetAmount *int64, deadline *time.Time, priority *models.GoalPriority, isActive *bool) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID string) error
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}
