package realtime

import "hearth/internal/models"

// Snapshot is the client-held view of one user's current budgeting state.
// It is a value type: Apply and the optimistic helpers return a new
// snapshot and never mutate slices in place, so a caller can hold the old
// value while the new one is built.
type Snapshot struct {
	Period       *models.Period
	Categories   []models.Category
	Transactions []models.Transaction
}

// NewSnapshot builds a snapshot from freshly fetched rows, as after a full
// re-fetch from the store.
func NewSnapshot(period *models.Period, categories []models.Category, transactions []models.Transaction) Snapshot {
	return Snapshot{
		Period:       period,
		Categories:   append([]models.Category(nil), categories...),
		Transactions: append([]models.Transaction(nil), transactions...),
	}
}

// HasTransaction reports whether a transaction with the given identity is
// present.
func (s Snapshot) HasTransaction(id string) bool {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return true
		}
	}
	return false
}

// CategoryByName returns the category with the given name in the tracked
// period, or nil.
func (s Snapshot) CategoryByName(name string) *models.Category {
	for i := range s.Categories {
		if s.Categories[i].Name == name {
			return &s.Categories[i]
		}
	}
	return nil
}

// TotalSpent sums the cached spent figure across all categories.
func (s Snapshot) TotalSpent() int64 {
	var total int64
	for i := range s.Categories {
		total += s.Categories[i].Spent
	}
	return total
}
