package realtime

import "hearth/internal/models"

// Apply merges one change event into a snapshot and returns the result. It
// is pure: the input snapshot is unchanged, and no event can make it fail.
// Events that do not match anything (an update for a row the snapshot never
// saw, a period event for a different period) are no-ops, since the push
// channel may run ahead of or behind local optimistic state.
func Apply(s Snapshot, ev Event) Snapshot {
	switch ev.Entity {
	case EntityTransaction:
		return applyTransaction(s, ev)
	case EntityCategory:
		return applyCategory(s, ev)
	case EntityPeriod:
		return applyPeriod(s, ev)
	}
	return s
}

// ApplyAll folds an ordered list of events over a snapshot.
func ApplyAll(s Snapshot, evs []Event) Snapshot {
	for _, ev := range evs {
		s = Apply(s, ev)
	}
	return s
}

// ApplyOptimisticTransaction records a local write before its realtime echo
// arrives. It produces exactly the shape an insert event would, so the echo
// is suppressed by identity when it lands.
func ApplyOptimisticTransaction(s Snapshot, tx models.Transaction) Snapshot {
	return applyTransaction(s, Event{Entity: EntityTransaction, Op: OpInsert, Transaction: &tx})
}

func applyTransaction(s Snapshot, ev Event) Snapshot {
	tx := ev.Transaction
	switch ev.Op {
	case OpInsert:
		// Duplicate suppression: the same mutation may already have been
		// applied optimistically by the caller.
		if s.HasTransaction(tx.ID) {
			return s
		}
		out := make([]models.Transaction, 0, len(s.Transactions)+1)
		out = append(out, *tx)
		out = append(out, s.Transactions...)
		s.Transactions = out
	case OpUpdate:
		idx := -1
		for i := range s.Transactions {
			if s.Transactions[i].ID == tx.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return s
		}
		out := append([]models.Transaction(nil), s.Transactions...)
		out[idx] = *tx
		s.Transactions = out
	case OpDelete:
		out := make([]models.Transaction, 0, len(s.Transactions))
		for i := range s.Transactions {
			if s.Transactions[i].ID != tx.ID {
				out = append(out, s.Transactions[i])
			}
		}
		if len(out) == len(s.Transactions) {
			return s
		}
		s.Transactions = out
	}
	return s
}

func applyCategory(s Snapshot, ev Event) Snapshot {
	cat := ev.Category
	switch ev.Op {
	case OpInsert, OpUpdate:
		// Upsert by (period, name): replace all mutable fields if present,
		// append otherwise.
		idx := -1
		for i := range s.Categories {
			if s.Categories[i].PeriodID == cat.PeriodID && s.Categories[i].Name == cat.Name {
				idx = i
				break
			}
		}
		out := append([]models.Category(nil), s.Categories...)
		if idx >= 0 {
			out[idx] = *cat
		} else {
			out = append(out, *cat)
		}
		s.Categories = out
	case OpDelete:
		out := make([]models.Category, 0, len(s.Categories))
		for i := range s.Categories {
			if s.Categories[i].PeriodID == cat.PeriodID && s.Categories[i].Name == cat.Name {
				continue
			}
			out = append(out, s.Categories[i])
		}
		if len(out) == len(s.Categories) {
			return s
		}
		s.Categories = out
	}
	return s
}

func applyPeriod(s Snapshot, ev Event) Snapshot {
	// Only updates for the currently-tracked period are meaningful; a stale
	// tab may still receive events for a superseded period.
	if ev.Op != OpUpdate || s.Period == nil || ev.Period.ID != s.Period.ID {
		return s
	}
	p := *ev.Period
	s.Period = &p
	return s
}
