package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
)

// healthService derives the monthly summary and the bounded financial
// health score. The arithmetic lives in pure package functions
// (MonthlyIncome, Summarize, Score) so it is testable without a store.
type healthService struct {
	db         *gorm.DB
	periods    PeriodServicer
	categories CategoryServicer
}

// NewHealthService creates a new HealthServicer.
func NewHealthService(db *gorm.DB, periods PeriodServicer, categories CategoryServicer) HealthServicer {
	return &healthService{db: db, periods: periods, categories: categories}
}

// MonthlyIncome normalizes heterogeneous income sources into a single
// monthly-equivalent figure in cents. Inactive sources are skipped. A
// one-time source counts in full only when its start date falls inside
// now's calendar month.
func MonthlyIncome(sources []models.IncomeSource, now time.Time) int64 {
	var total float64
	for _, src := range sources {
		if !src.IsActive {
			continue
		}
		amount := float64(src.Amount)
		switch src.Frequency {
		case models.FrequencyWeekly:
			total += amount * 52 / 12
		case models.FrequencyBiWeekly:
			total += amount * 26 / 12
		case models.FrequencyMonthly:
			total += amount
		case models.FrequencyQuarterly:
			total += amount / 3
		case models.FrequencyYearly:
			total += amount / 12
		case models.FrequencyOneTime:
			if src.StartDate.Year() == now.Year() && src.StartDate.Month() == now.Month() {
				total += amount
			}
		}
	}
	return int64(math.Round(total))
}

// monthsUntil returns whole calendar months from now to deadline, floored
// at one so a past or imminent deadline still yields a finite target.
func monthsUntil(now, deadline time.Time) int {
	months := (deadline.Year()-now.Year())*12 + int(deadline.Month()) - int(now.Month())
	if months < 1 {
		return 1
	}
	return months
}

// Summarize computes the monthly financial position from income sources,
// the current period's categories, and savings goals.
func Summarize(sources []models.IncomeSource, categories []models.Category, goals []models.SavingsGoal, now time.Time) Summary {
	income := MonthlyIncome(sources, now)

	var expenses int64
	variances := make([]CategoryVariance, 0, len(categories))
	for _, category := range categories {
		expenses += category.Spent
		variances = append(variances, CategoryVariance{
			Name:      category.Name,
			Allocated: category.Allocated,
			Spent:     category.Spent,
			Variance:  category.Allocated - category.Spent,
			Status:    varianceStatus(category.Allocated, category.Spent),
		})
	}

	var savingsTarget int64
	for _, goal := range goals {
		if !goal.IsActive {
			continue
		}
		remaining := goal.Remaining()
		if remaining == 0 {
			continue
		}
		switch {
		case goal.Deadline != nil:
			savingsTarget += remaining / int64(monthsUntil(now, *goal.Deadline))
		case goal.MonthlyContribution != nil:
			savingsTarget += *goal.MonthlyContribution
		default:
			// No deadline and no set contribution: spread over a year.
			savingsTarget += remaining / 12
		}
	}

	return Summary{
		TotalMonthlyIncome:   income,
		TotalMonthlyExpenses: expenses,
		TotalSavingsTarget:   savingsTarget,
		NetCashFlow:          income - expenses,
		Variances:            variances,
	}
}

// varianceStatus classifies spend against allocation with a ±5% tolerance
// band.
func varianceStatus(allocated, spent int64) VarianceStatus {
	if allocated == 0 {
		if spent > 0 {
			return VarianceOver
		}
		return VarianceOnTarget
	}
	ratio := float64(spent) / float64(allocated)
	switch {
	case ratio > 1.05:
		return VarianceOver
	case ratio < 0.95:
		return VarianceUnder
	default:
		return VarianceOnTarget
	}
}

// Score combines the summary, savings goals, and the period's total
// allocation into a 0–100 score with ordered recommendations.
// totalAllocated is the sum of category allocations in cents; six months of
// it is the emergency-fund target that gates a perfect score.
func Score(summary Summary, goals []models.SavingsGoal, totalAllocated int64) HealthScore {
	income := float64(summary.TotalMonthlyIncome)
	expenses := float64(summary.TotalMonthlyExpenses)

	// All-zero input: the stepped thresholds would award points for data
	// that simply is not there.
	if income == 0 && expenses == 0 {
		return HealthScore{
			Score:           0,
			Recommendations: []string{"Add income sources and budget data to get a financial health score."},
		}
	}

	ratio := incomeExpenseRatio(income, expenses)
	savingsRate := 0.0
	if income > 0 {
		savingsRate = (income - expenses) / income * 100
	}

	emergency := emergencyFundGoal(goals)
	weeks := emergencyWeeks(emergency, expenses)

	activeGoals := 0
	for _, goal := range goals {
		if goal.IsActive {
			activeGoals++
		}
	}

	cashFlowRatio := 0.0
	if income > 0 {
		cashFlowRatio = float64(summary.NetCashFlow) / income
	}

	score := ratioPoints(ratio) +
		savingsRatePoints(savingsRate) +
		emergencyWeeksPoints(weeks) +
		goalPoints(activeGoals, emergency) +
		cashFlowPoints(cashFlowRatio)
	if score > 100 {
		score = 100
	}

	// A perfect score requires a fully funded six-month emergency fund;
	// three months of coverage lifts the cap to 95.
	fullyFunded := emergency != nil && totalAllocated > 0 &&
		emergency.CurrentAmount >= 6*totalAllocated
	if !fullyFunded {
		cap := 90
		if weeks >= 13 {
			cap = 95
		}
		if score > cap {
			score = cap
		}
	}

	return HealthScore{
		Score:              score,
		IncomeExpenseRatio: ratio,
		SavingsRate:        savingsRate,
		EmergencyFundWeeks: weeks,
		Recommendations:    recommendations(score, ratio, savingsRate, weeks, activeGoals, summary.NetCashFlow, emergency, totalAllocated),
	}
}

// incomeExpenseRatio guards the zero-expense case; with income and no
// expenses the ratio is reported as a saturated 100.
func incomeExpenseRatio(income, expenses float64) float64 {
	if expenses > 0 {
		return income / expenses
	}
	if income > 0 {
		return 100
	}
	return 0
}

func emergencyFundGoal(goals []models.SavingsGoal) *models.SavingsGoal {
	for i := range goals {
		if goals[i].IsActive && goals[i].Category == models.EmergencyFundCategory {
			return &goals[i]
		}
	}
	return nil
}

// emergencyWeeks measures the fund in weeks of current expense coverage.
func emergencyWeeks(emergency *models.SavingsGoal, monthlyExpenses float64) float64 {
	if emergency == nil || emergency.CurrentAmount <= 0 {
		return 0
	}
	weekly := monthlyExpenses * 12 / 52
	if weekly <= 0 {
		// No expenses to cover; clamp to a year rather than dividing by
		// zero.
		return 52
	}
	return float64(emergency.CurrentAmount) / weekly
}

func ratioPoints(ratio float64) int {
	switch {
	case ratio >= 2.0:
		return 30
	case ratio >= 1.5:
		return 25
	case ratio >= 1.3:
		return 20
	case ratio >= 1.1:
		return 15
	case ratio >= 1.0:
		return 10
	default:
		return 0
	}
}

func savingsRatePoints(rate float64) int {
	var points int
	switch {
	case rate >= 20:
		points = 30
	case rate >= 15:
		points = 25
	case rate >= 10:
		points = 20
	case rate >= 7:
		points = 15
	case rate >= 5:
		points = 10
	case rate >= 3:
		points = 5
	}
	// Rare-performance bonuses.
	if rate >= 30 {
		points += 5
	}
	if rate >= 50 {
		points += 5
	}
	return points
}

func emergencyWeeksPoints(weeks float64) int {
	switch {
	case weeks >= 26:
		return 25
	case weeks >= 13:
		return 18
	case weeks >= 8:
		return 12
	case weeks >= 4:
		return 6
	case weeks >= 1:
		return 2
	default:
		return 0
	}
}

func goalPoints(activeGoals int, emergency *models.SavingsGoal) int {
	var points int
	switch {
	case activeGoals >= 3:
		points = 10
	case activeGoals == 2:
		points = 8
	case activeGoals == 1:
		points = 5
	}
	if emergency != nil {
		points += 5
	}
	return points
}

func cashFlowPoints(ratio float64) int {
	var points int
	switch {
	case ratio >= 0.3:
		points = 15
	case ratio >= 0.2:
		points = 12
	case ratio >= 0.1:
		points = 8
	case ratio > 0:
		points = 4
	}
	if ratio >= 0.5 {
		points += 5
	}
	return points
}

// recommendations emits advice in fixed priority order: emergency-fund
// shortfall first, then either high-score optimization messages or every
// applicable deficiency message, then a single positive closer when nothing
// else applied.
func recommendations(score int, ratio, savingsRate, weeks float64, activeGoals int, netCashFlow int64, emergency *models.SavingsGoal, totalAllocated int64) []string {
	var recs []string

	var remaining int64
	switch {
	case emergency == nil:
		remaining = 6 * totalAllocated
	case emergency.Progress() < 100:
		remaining = emergency.Remaining()
	}
	if emergency == nil || emergency.Progress() < 100 {
		recs = append(recs, fmt.Sprintf(
			"Keep building your emergency fund: $%.2f to go for six months of coverage.",
			float64(remaining)/100))
	}

	if score >= 85 {
		recs = append(recs,
			"Excellent financial health! Your budget and savings habits are working.",
			"Consider putting surplus cash flow toward investments or long-term goals.")
		return recs
	}

	applied := false
	if ratio < 1.5 {
		recs = append(recs, "Your income is close to your expenses. Look for recurring costs to trim or ways to raise income.")
		applied = true
	}
	if savingsRate < 10 {
		recs = append(recs, "Aim to save at least 10% of your monthly income.")
		applied = true
	}
	if weeks < 13 {
		recs = append(recs, "Grow your emergency fund toward three months of expenses.")
		applied = true
	}
	if activeGoals == 0 {
		recs = append(recs, "Set up at least one savings goal to build momentum.")
		applied = true
	}
	if netCashFlow < 0 {
		recs = append(recs, "You are spending more than you earn this month. Review your largest categories.")
		applied = true
	}
	if !applied && len(recs) == 0 {
		recs = append(recs, "You're on track. Keep your current habits going.")
	}
	return recs
}

// GetSummary loads the user's data and computes the monthly summary against
// the active period.
func (s *healthService) GetSummary(userID string, now time.Time) (*Summary, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	period, err := s.periods.ResolveActivePeriod(userID, now)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.ListByPeriod(period.ID)
	if err != nil {
		return nil, err
	}

	sources, goals, err := s.loadIncomeAndGoals(userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(sources, categories, goals, now)
	return &summary, nil
}

// GetHealthScore computes the bounded health score for the user's current
// state.
func (s *healthService) GetHealthScore(userID string, now time.Time) (*HealthScore, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	period, err := s.periods.ResolveActivePeriod(userID, now)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.ListByPeriod(period.ID)
	if err != nil {
		return nil, err
	}

	sources, goals, err := s.loadIncomeAndGoals(userID)
	if err != nil {
		return nil, err
	}

	var totalAllocated int64
	for _, category := range categories {
		totalAllocated += category.Allocated
	}

	summary := Summarize(sources, categories, goals, now)
	result := Score(summary, goals, totalAllocated)
	return &result, nil
}

func (s *healthService) loadIncomeAndGoals(userID string) ([]models.IncomeSource, []models.SavingsGoal, error) {
	var sources []models.IncomeSource
	if err := s.db.Where("user_id = ?", userID).Find(&sources).Error; err != nil {
		return nil, nil, apperrors.StoreOp("list income sources", err)
	}
	var goals []models.SavingsGoal
	if err := s.db.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, nil, apperrors.StoreOp("list savings goals", err)
	}
	return sources, goals, nil
}
