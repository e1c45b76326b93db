package models

// Category represents one budget line within a period. Spent is a cache
// derived from the transaction ledger; the reconciler repairs it when it
// drifts. (PeriodID, Name) is unique.
type Category struct {
	Base
	PeriodID  string `gorm:"type:uuid;not null;uniqueIndex:idx_categories_period_name" json:"period_id"`
	Name      string `gorm:"not null;uniqueIndex:idx_categories_period_name" json:"name"`
	Allocated int64  `gorm:"not null;default:0" json:"allocated"` // cents
	Spent     int64  `gorm:"not null;default:0" json:"spent"`     // cents, cached
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	IsCustom  bool   `gorm:"not null;default:false" json:"is_custom"`
}

// CoreCategory describes one entry of the fixed seed set.
type CoreCategory struct {
	Name  string
	Color string
	Icon  string
}

// CoreCategories is the fixed set seeded for first-time users. Core
// categories are never deletable.
var CoreCategories = []CoreCategory{
	{Name: "groceries", Color: "#4CAF50", Icon: "shopping-cart"},
	{Name: "housing", Color: "#795548", Icon: "home"},
	{Name: "transportation", Color: "#2196F3", Icon: "car"},
	{Name: "shopping", Color: "#E91E63", Icon: "shopping-bag"},
	{Name: "entertainment", Color: "#9C27B0", Icon: "film"},
	{Name: "dining", Color: "#FF9800", Icon: "utensils"},
	{Name: "utilities", Color: "#607D8B", Icon: "zap"},
	{Name: "subscriptions", Color: "#00BCD4", Icon: "repeat"},
}

// IsCoreCategoryName reports whether name is in the fixed core set.
func IsCoreCategoryName(name string) bool {
	for _, c := range CoreCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}
