package models

import "time"

// Period represents one calendar month of budgeting for a user.
// At most one period per user may have IsActive set at any time; the
// partial unique index on (user_id) WHERE is_active enforces this at the
// store. Superseded periods are deactivated, never deleted.
type Period struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Year        int        `gorm:"not null" json:"year"`
	Month       int        `gorm:"not null" json:"month"` // 1-based, as in time.Month
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     time.Time  `gorm:"not null" json:"end_date"`
	TotalBudget *int64     `json:"total_budget,omitempty"` // cents
	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`

	// Relationships
	Categories []Category `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// Covers reports whether the period's calendar month matches t.
func (p *Period) Covers(t time.Time) bool {
	return p.Year == t.Year() && p.Month == int(t.Month())
}

// MonthBounds returns the first instant of t's calendar month and the last
// instant of its final day, in t's location.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
