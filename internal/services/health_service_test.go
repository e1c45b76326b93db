package services

import (
	"strings"
	"testing"
	"time"

	"hearth/internal/models"
	"hearth/internal/testutil"
)

func TestMonthlyIncome(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	source := func(amount int64, freq models.IncomeFrequency, start time.Time) models.IncomeSource {
		return models.IncomeSource{Amount: amount, Frequency: freq, IsActive: true, StartDate: start}
	}

	t.Run("normalizes_frequencies", func(t *testing.T) {
		cases := []struct {
			name   string
			src    models.IncomeSource
			expect int64
		}{
			{"weekly", source(10000, models.FrequencyWeekly, now), 43333},
			{"bi_weekly", source(10000, models.FrequencyBiWeekly, now), 21667},
			{"monthly", source(10000, models.FrequencyMonthly, now), 10000},
			{"quarterly", source(30000, models.FrequencyQuarterly, now), 10000},
			{"yearly", source(120000, models.FrequencyYearly, now), 10000},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got := MonthlyIncome([]models.IncomeSource{tc.src}, now)
				if got != tc.expect {
					t.Errorf("expected %d, got %d", tc.expect, got)
				}
			})
		}
	})

	t.Run("one_time_counts_only_in_its_month", func(t *testing.T) {
		inMonth := source(50000, models.FrequencyOneTime, now.AddDate(0, 0, -5))
		outOfMonth := source(50000, models.FrequencyOneTime, now.AddDate(0, -1, 0))

		if got := MonthlyIncome([]models.IncomeSource{inMonth}, now); got != 50000 {
			t.Errorf("expected one-time in current month to count in full, got %d", got)
		}
		if got := MonthlyIncome([]models.IncomeSource{outOfMonth}, now); got != 0 {
			t.Errorf("expected one-time outside current month to count zero, got %d", got)
		}
	})

	t.Run("skips_inactive_sources", func(t *testing.T) {
		inactive := source(10000, models.FrequencyMonthly, now)
		inactive.IsActive = false
		if got := MonthlyIncome([]models.IncomeSource{inactive}, now); got != 0 {
			t.Errorf("expected inactive source to be skipped, got %d", got)
		}
	})

	t.Run("sums_multiple_sources", func(t *testing.T) {
		sources := []models.IncomeSource{
			source(10000, models.FrequencyMonthly, now),
			source(10000, models.FrequencyWeekly, now),
		}
		if got := MonthlyIncome(sources, now); got != 53333 {
			t.Errorf("expected 53333, got %d", got)
		}
	})
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	t.Run("variance_statuses", func(t *testing.T) {
		categories := []models.Category{
			{Name: "groceries", Allocated: 40000, Spent: 30000},  // under
			{Name: "dining", Allocated: 20000, Spent: 25000},     // over
			{Name: "utilities", Allocated: 10000, Spent: 10200},  // within 5%
			{Name: "unplanned", Allocated: 0, Spent: 500},        // spend with no allocation
		}
		summary := Summarize(nil, categories, nil, now)

		if summary.TotalMonthlyExpenses != 65700 {
			t.Errorf("expected expenses 65700, got %d", summary.TotalMonthlyExpenses)
		}
		expect := map[string]VarianceStatus{
			"groceries": VarianceUnder,
			"dining":    VarianceOver,
			"utilities": VarianceOnTarget,
			"unplanned": VarianceOver,
		}
		for _, v := range summary.Variances {
			if v.Status != expect[v.Name] {
				t.Errorf("category %q: expected status %s, got %s", v.Name, expect[v.Name], v.Status)
			}
		}
	})

	t.Run("savings_target_from_goals", func(t *testing.T) {
		deadline := now.AddDate(0, 10, 0)
		contribution := int64(5000)
		goals := []models.SavingsGoal{
			{Name: "trip", TargetAmount: 120000, CurrentAmount: 20000, Deadline: &deadline, IsActive: true},
			{Name: "laptop", TargetAmount: 80000, MonthlyContribution: &contribution, IsActive: true},
			{Name: "open-ended", TargetAmount: 120000, IsActive: true},
			{Name: "done", TargetAmount: 50000, CurrentAmount: 50000, IsActive: true},
			{Name: "paused", TargetAmount: 90000, IsActive: false},
		}
		summary := Summarize(nil, nil, goals, now)

		// 100000/10 months + 5000 contribution + 120000/12.
		if summary.TotalSavingsTarget != 10000+5000+10000 {
			t.Errorf("expected savings target 25000, got %d", summary.TotalSavingsTarget)
		}
	})

	t.Run("net_cash_flow", func(t *testing.T) {
		sources := []models.IncomeSource{{Amount: 450000, Frequency: models.FrequencyMonthly, IsActive: true, StartDate: now}}
		categories := []models.Category{{Name: "housing", Allocated: 200000, Spent: 200000}}
		summary := Summarize(sources, categories, nil, now)

		if summary.NetCashFlow != 250000 {
			t.Errorf("expected net cash flow 250000, got %d", summary.NetCashFlow)
		}
	})
}

func TestScore(t *testing.T) {
	t.Run("strong_position_without_emergency_fund_caps_at_90", func(t *testing.T) {
		// $4500 income, $2000 expenses, no emergency fund, no goals.
		summary := Summary{
			TotalMonthlyIncome:   450000,
			TotalMonthlyExpenses: 200000,
			NetCashFlow:          250000,
		}
		result := Score(summary, nil, 200000)

		if result.Score != 90 {
			t.Errorf("expected score 90, got %d", result.Score)
		}
		if result.IncomeExpenseRatio != 2.25 {
			t.Errorf("expected ratio 2.25, got %f", result.IncomeExpenseRatio)
		}
		if result.EmergencyFundWeeks != 0 {
			t.Errorf("expected 0 emergency weeks, got %f", result.EmergencyFundWeeks)
		}
	})

	t.Run("three_months_coverage_lifts_cap_to_95", func(t *testing.T) {
		summary := Summary{
			TotalMonthlyIncome:   450000,
			TotalMonthlyExpenses: 200000,
			NetCashFlow:          250000,
		}
		goals := []models.SavingsGoal{{
			Name:          "Emergency Fund",
			TargetAmount:  1500000,
			CurrentAmount: 1200000,
			IsActive:      true,
			Category:      models.EmergencyFundCategory,
		}}
		// Six months of the 250000 allocation would need 1500000; the fund
		// holds 1200000, so the score stays capped.
		result := Score(summary, goals, 250000)

		if result.Score != 95 {
			t.Errorf("expected score 95, got %d", result.Score)
		}
		if result.EmergencyFundWeeks < 13 {
			t.Errorf("expected at least 13 weeks of coverage, got %f", result.EmergencyFundWeeks)
		}
	})

	t.Run("fully_funded_emergency_fund_allows_100", func(t *testing.T) {
		summary := Summary{
			TotalMonthlyIncome:   450000,
			TotalMonthlyExpenses: 200000,
			NetCashFlow:          250000,
		}
		goals := []models.SavingsGoal{{
			Name:          "Emergency Fund",
			TargetAmount:  1200000,
			CurrentAmount: 1200000,
			IsActive:      true,
			Category:      models.EmergencyFundCategory,
		}}
		result := Score(summary, goals, 200000)

		if result.Score != 100 {
			t.Errorf("expected score 100, got %d", result.Score)
		}
	})

	t.Run("zero_income_and_expenses_short_circuits", func(t *testing.T) {
		result := Score(Summary{}, nil, 0)

		if result.Score != 0 {
			t.Errorf("expected score 0, got %d", result.Score)
		}
		if len(result.Recommendations) != 1 {
			t.Fatalf("expected exactly 1 recommendation, got %d", len(result.Recommendations))
		}
	})

	t.Run("breakeven_budget_scores_low", func(t *testing.T) {
		summary := Summary{
			TotalMonthlyIncome:   100000,
			TotalMonthlyExpenses: 100000,
			NetCashFlow:          0,
		}
		result := Score(summary, nil, 100000)

		if result.Score != 10 {
			t.Errorf("expected score 10 from the ratio band alone, got %d", result.Score)
		}
	})
}

func TestRecommendations(t *testing.T) {
	t.Run("deficiencies_in_priority_order", func(t *testing.T) {
		summary := Summary{
			TotalMonthlyIncome:   100000,
			TotalMonthlyExpenses: 100000,
			NetCashFlow:          0,
		}
		result := Score(summary, nil, 100000)

		if len(result.Recommendations) != 5 {
			t.Fatalf("expected 5 recommendations, got %d: %v", len(result.Recommendations), result.Recommendations)
		}
		order := []string{"emergency fund", "income is close", "at least 10%", "three months", "savings goal"}
		for i, fragment := range order {
			if !strings.Contains(strings.ToLower(result.Recommendations[i]), fragment) {
				t.Errorf("recommendation %d: expected %q advice, got %q", i, fragment, result.Recommendations[i])
			}
		}
	})

	t.Run("high_score_gets_optimization_advice", func(t *testing.T) {
		summary := Summary{
			TotalMonthlyIncome:   450000,
			TotalMonthlyExpenses: 200000,
			NetCashFlow:          250000,
		}
		goals := []models.SavingsGoal{{
			Name:          "Emergency Fund",
			TargetAmount:  1200000,
			CurrentAmount: 1200000,
			IsActive:      true,
			Category:      models.EmergencyFundCategory,
		}}
		result := Score(summary, goals, 200000)

		if len(result.Recommendations) != 2 {
			t.Fatalf("expected 2 recommendations for a perfect score, got %d: %v",
				len(result.Recommendations), result.Recommendations)
		}
		if !strings.Contains(result.Recommendations[0], "Excellent") {
			t.Errorf("expected congratulatory lead, got %q", result.Recommendations[0])
		}
	})

	t.Run("overspending_is_flagged", func(t *testing.T) {
		summary := Summary{
			TotalMonthlyIncome:   100000,
			TotalMonthlyExpenses: 120000,
			NetCashFlow:          -20000,
		}
		result := Score(summary, nil, 100000)

		found := false
		for _, rec := range result.Recommendations {
			if strings.Contains(rec, "more than you earn") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected overspending advice, got %v", result.Recommendations)
		}
	})
}

func TestGetHealthScore(t *testing.T) {
	t.Run("against_active_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categories := NewCategoryService(db, nil)
		periods := NewPeriodService(db, categories)
		svc := NewHealthService(db, periods, categories)
		user := testutil.CreateTestUser(t, db)

		now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
		period := testutil.CreateTestPeriod(t, db, user.ID, now)
		housing := testutil.CreateTestCategory(t, db, period.ID, "housing", 200000)
		if err := db.Model(housing).Update("spent", 200000).Error; err != nil {
			t.Fatalf("failed to set spent: %v", err)
		}
		testutil.CreateTestIncomeSource(t, db, user.ID, 450000, models.FrequencyMonthly)

		result, err := svc.GetHealthScore(user.ID, now)
		testutil.AssertNoError(t, err)

		if result.Score != 90 {
			t.Errorf("expected score 90, got %d", result.Score)
		}
	})

	t.Run("missing_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categories := NewCategoryService(db, nil)
		periods := NewPeriodService(db, categories)
		svc := NewHealthService(db, periods, categories)

		_, err := svc.GetHealthScore("", time.Now())
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}
