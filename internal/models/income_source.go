package models

import "time"

// IncomeFrequency represents how often an income source pays out.
type IncomeFrequency string

const (
	FrequencyWeekly    IncomeFrequency = "weekly"
	FrequencyBiWeekly  IncomeFrequency = "bi-weekly"
	FrequencyMonthly   IncomeFrequency = "monthly"
	FrequencyQuarterly IncomeFrequency = "quarterly"
	FrequencyYearly    IncomeFrequency = "yearly"
	FrequencyOneTime   IncomeFrequency = "one-time"
)

// IncomeSource is a recurring or one-time source of income. It is not
// period-scoped; the health service normalizes it to a monthly figure on
// demand.
type IncomeSource struct {
	Base
	UserID    string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string          `gorm:"not null" json:"name"`
	Amount    int64           `gorm:"not null" json:"amount"` // cents
	Frequency IncomeFrequency `gorm:"not null" json:"frequency"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	StartDate time.Time       `gorm:"not null" json:"start_date"`
}
