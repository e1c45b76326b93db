package realtime

import (
	"testing"

	"hearth/internal/models"
)

func makeSnapshot() Snapshot {
	period := &models.Period{Base: models.Base{ID: "p1"}, Year: 2026, Month: 3, IsActive: true}
	categories := []models.Category{
		{Base: models.Base{ID: "c1"}, PeriodID: "p1", Name: "groceries", Allocated: 40000, Spent: 5000},
		{Base: models.Base{ID: "c2"}, PeriodID: "p1", Name: "dining", Allocated: 20000, Spent: 1800},
	}
	transactions := []models.Transaction{
		{Base: models.Base{ID: "t1"}, PeriodID: "p1", Amount: 5000},
	}
	return NewSnapshot(period, categories, transactions)
}

func TestApplyTransaction(t *testing.T) {
	t.Run("insert_prepends", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:      EntityTransaction,
			Op:          OpInsert,
			Transaction: &models.Transaction{Base: models.Base{ID: "t2"}, PeriodID: "p1", Amount: 1200},
		})

		if len(next.Transactions) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(next.Transactions))
		}
		if next.Transactions[0].ID != "t2" {
			t.Errorf("expected newest transaction first, got %s", next.Transactions[0].ID)
		}
		if len(s.Transactions) != 1 {
			t.Error("input snapshot must not be mutated")
		}
	})

	t.Run("echo_of_optimistic_insert_is_suppressed", func(t *testing.T) {
		s := makeSnapshot()
		local := models.Transaction{Base: models.Base{ID: "t2"}, PeriodID: "p1", Amount: 1200}

		s = ApplyOptimisticTransaction(s, local)
		echoed := Apply(s, Event{Entity: EntityTransaction, Op: OpInsert, Transaction: &local})

		if len(echoed.Transactions) != 2 {
			t.Errorf("expected echo to be a no-op, got %d transactions", len(echoed.Transactions))
		}
	})

	t.Run("update_replaces_matching_row", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:      EntityTransaction,
			Op:          OpUpdate,
			Transaction: &models.Transaction{Base: models.Base{ID: "t1"}, PeriodID: "p1", Amount: 7500},
		})

		if next.Transactions[0].Amount != 7500 {
			t.Errorf("expected updated amount 7500, got %d", next.Transactions[0].Amount)
		}
		if s.Transactions[0].Amount != 5000 {
			t.Error("input snapshot must not be mutated")
		}
	})

	t.Run("update_for_unseen_row_is_noop", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:      EntityTransaction,
			Op:          OpUpdate,
			Transaction: &models.Transaction{Base: models.Base{ID: "unknown"}, Amount: 1},
		})

		if len(next.Transactions) != 1 || next.Transactions[0].Amount != 5000 {
			t.Errorf("expected snapshot unchanged, got %+v", next.Transactions)
		}
	})

	t.Run("delete_removes_row", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:      EntityTransaction,
			Op:          OpDelete,
			Transaction: &models.Transaction{Base: models.Base{ID: "t1"}},
		})

		if len(next.Transactions) != 0 {
			t.Errorf("expected empty transaction list, got %d", len(next.Transactions))
		}
	})

	t.Run("delete_for_unseen_row_is_noop", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:      EntityTransaction,
			Op:          OpDelete,
			Transaction: &models.Transaction{Base: models.Base{ID: "unknown"}},
		})

		if len(next.Transactions) != 1 {
			t.Errorf("expected snapshot unchanged, got %d transactions", len(next.Transactions))
		}
	})
}

func TestApplyCategory(t *testing.T) {
	t.Run("update_upserts_by_period_and_name", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:   EntityCategory,
			Op:       OpUpdate,
			Category: &models.Category{Base: models.Base{ID: "c1"}, PeriodID: "p1", Name: "groceries", Allocated: 40000, Spent: 8000},
		})

		got := next.CategoryByName("groceries")
		if got == nil || got.Spent != 8000 {
			t.Fatalf("expected groceries spent 8000, got %+v", got)
		}
		if s.CategoryByName("groceries").Spent != 5000 {
			t.Error("input snapshot must not be mutated")
		}
	})

	t.Run("update_for_unseen_category_appends", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:   EntityCategory,
			Op:       OpUpdate,
			Category: &models.Category{Base: models.Base{ID: "c3"}, PeriodID: "p1", Name: "pets", Spent: 1200, IsCustom: true},
		})

		if len(next.Categories) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(next.Categories))
		}
		if next.CategoryByName("pets") == nil {
			t.Error("expected pets category to be added")
		}
	})

	t.Run("delete_removes_category", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity:   EntityCategory,
			Op:       OpDelete,
			Category: &models.Category{PeriodID: "p1", Name: "dining"},
		})

		if len(next.Categories) != 1 || next.CategoryByName("dining") != nil {
			t.Errorf("expected dining removed, got %+v", next.Categories)
		}
	})

	t.Run("total_spent_tracks_merges", func(t *testing.T) {
		s := makeSnapshot()
		if s.TotalSpent() != 6800 {
			t.Fatalf("expected initial total 6800, got %d", s.TotalSpent())
		}
		next := Apply(s, Event{
			Entity:   EntityCategory,
			Op:       OpUpdate,
			Category: &models.Category{Base: models.Base{ID: "c1"}, PeriodID: "p1", Name: "groceries", Spent: 9000},
		})
		if next.TotalSpent() != 10800 {
			t.Errorf("expected total 10800 after merge, got %d", next.TotalSpent())
		}
	})
}

func TestApplyPeriod(t *testing.T) {
	t.Run("update_for_tracked_period", func(t *testing.T) {
		s := makeSnapshot()
		budget := int64(300000)
		next := Apply(s, Event{
			Entity: EntityPeriod,
			Op:     OpUpdate,
			Period: &models.Period{Base: models.Base{ID: "p1"}, Year: 2026, Month: 3, TotalBudget: &budget, IsActive: true},
		})

		if next.Period.TotalBudget == nil || *next.Period.TotalBudget != 300000 {
			t.Errorf("expected total budget 300000, got %v", next.Period.TotalBudget)
		}
		if s.Period.TotalBudget != nil {
			t.Error("input snapshot must not be mutated")
		}
	})

	t.Run("update_for_other_period_is_noop", func(t *testing.T) {
		s := makeSnapshot()
		next := Apply(s, Event{
			Entity: EntityPeriod,
			Op:     OpUpdate,
			Period: &models.Period{Base: models.Base{ID: "p2"}, Year: 2026, Month: 4},
		})

		if next.Period.ID != "p1" {
			t.Errorf("expected tracked period unchanged, got %s", next.Period.ID)
		}
	})
}

func TestApplyAll(t *testing.T) {
	s := makeSnapshot()
	events := []Event{
		{Entity: EntityTransaction, Op: OpInsert, Transaction: &models.Transaction{Base: models.Base{ID: "t2"}, PeriodID: "p1", Amount: 1200}},
		{Entity: EntityCategory, Op: OpUpdate, Category: &models.Category{Base: models.Base{ID: "c1"}, PeriodID: "p1", Name: "groceries", Spent: 6200}},
		{Entity: EntityTransaction, Op: OpDelete, Transaction: &models.Transaction{Base: models.Base{ID: "t1"}}},
	}

	next := ApplyAll(s, events)

	if len(next.Transactions) != 1 || next.Transactions[0].ID != "t2" {
		t.Errorf("expected only t2 to remain, got %+v", next.Transactions)
	}
	if next.CategoryByName("groceries").Spent != 6200 {
		t.Errorf("expected groceries spent 6200, got %d", next.CategoryByName("groceries").Spent)
	}
}

func TestDecode(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		name := "groceries"
		original := Event{
			Entity:      EntityTransaction,
			Op:          OpInsert,
			Transaction: &models.Transaction{Base: models.Base{ID: "t9"}, PeriodID: "p1", CategoryName: &name, Amount: 2500},
		}
		body, err := Encode(original)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		decoded, err := Decode(body)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if decoded.Entity != EntityTransaction || decoded.Op != OpInsert {
			t.Errorf("expected transaction.insert, got %s", decoded.RoutingKey())
		}
		if decoded.Transaction.ID != "t9" || decoded.Transaction.Amount != 2500 {
			t.Errorf("payload mismatch: %+v", decoded.Transaction)
		}
	})

	t.Run("rejects_malformed", func(t *testing.T) {
		cases := []struct {
			name string
			body string
		}{
			{"not_json", "{"},
			{"unknown_entity", `{"entity":"widget","op":"insert","payload":{}}`},
			{"unknown_op", `{"entity":"transaction","op":"upsert","payload":{}}`},
			{"transaction_without_id", `{"entity":"transaction","op":"insert","payload":{"amount":100}}`},
			{"category_without_identity", `{"entity":"category","op":"update","payload":{"spent":5}}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := Decode([]byte(tc.body)); err == nil {
					t.Error("expected decode error")
				}
			})
		}
	})
}
