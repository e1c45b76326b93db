package models

import "time"

// Transaction is the ground truth of spend. Amount is signed cents,
// positive for an expense. CategoryName may be empty; uncategorized spend
// never contributes to any category's cached total.
type Transaction struct {
	Base
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	PeriodID     string    `gorm:"type:uuid;not null;index" json:"period_id"`
	CategoryName *string   `json:"category_name,omitempty"`
	Amount       int64     `gorm:"type:bigint;not null" json:"amount"`
	Description  string    `json:"description"`
	Merchant     string    `json:"merchant"`
	Date         time.Time `gorm:"not null" json:"date"`
}
