package models

import "time"

// GoalPriority represents the relative importance of a savings goal.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// EmergencyFundCategory is the goal category with special meaning to the
// health scorer: its balance is read as weeks of expense coverage.
const EmergencyFundCategory = "emergency-fund"

// SavingsGoal tracks progress toward a target amount, independent of any
// budget period.
type SavingsGoal struct {
	Base
	UserID              string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                string       `gorm:"not null" json:"name"`
	TargetAmount        int64        `gorm:"not null" json:"target_amount"`  // cents
	CurrentAmount       int64        `gorm:"not null;default:0" json:"current_amount"` // cents
	Deadline            *time.Time   `json:"deadline,omitempty"`
	Priority            GoalPriority `gorm:"not null;default:medium" json:"priority"`
	MonthlyContribution *int64       `json:"monthly_contribution,omitempty"` // cents, auto-contribution
	IsActive            bool         `gorm:"default:true" json:"is_active"`
	Category            string       `json:"category"`
}

// Remaining returns the amount still needed to reach the target, floored at
// zero.
func (g *SavingsGoal) Remaining() int64 {
	if g.CurrentAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.CurrentAmount
}

// Progress returns completion as a percentage of the target.
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 100
	}
	return float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
}
