package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"portafoglio/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadEmpty(t *testing.T) {
	repo := newTestRepo(t)

	_, _, found, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatalf("fresh database must report no saved state")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expenses := []core.Expense{
		{ID: "b", Title: "Bus", Amount: core.Money{Cents: 300}, Category: core.Travel, Date: core.NewDate(2024, 1, 2)},
		{ID: "a", Title: "Lunch", Amount: core.Money{Cents: 2000}, Category: core.Food, Date: core.NewDate(2024, 1, 1)},
	}
	if err := repo.SaveBalance(ctx, core.Money{Cents: 497700}); err != nil {
		t.Fatalf("save balance: %v", err)
	}
	if err := repo.ReplaceExpenses(ctx, expenses); err != nil {
		t.Fatalf("replace expenses: %v", err)
	}

	balance, got, found, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("expected saved state")
	}
	if balance.Cents != 497700 {
		t.Fatalf("balance=%d want 497700", balance.Cents)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("order not preserved: %+v", got)
	}
	if got[1].Date.String() != "2024-01-01" || got[1].Category != core.Food {
		t.Fatalf("fields lost in round trip: %+v", got[1])
	}
}

func TestReplaceExpensesOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []core.Expense{
		{ID: "x", Title: "Old", Amount: core.Money{Cents: 100}, Category: core.Other, Date: core.NewDate(2024, 1, 1)},
	}
	if err := repo.ReplaceExpenses(ctx, first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.ReplaceExpenses(ctx, nil); err != nil {
		t.Fatalf("replace with empty: %v", err)
	}
	if err := repo.SaveBalance(ctx, core.Money{Cents: 1}); err != nil {
		t.Fatalf("save balance: %v", err)
	}

	_, got, _, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty expense list, got %+v", got)
	}
}

func TestGetExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := core.Expense{ID: "abc", Title: "Lunch", Amount: core.Money{Cents: 2000}, Category: core.Food, Date: core.NewDate(2024, 1, 1)}
	if err := repo.ReplaceExpenses(ctx, []core.Expense{e}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.GetExpense(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != e {
		t.Fatalf("round trip mismatch: %+v != %+v", got, e)
	}

	if _, err := repo.GetExpense(ctx, "missing"); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestListExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	got, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no expenses, got %+v", got)
	}

	expenses := []core.Expense{
		{ID: "b", Title: "Bus", Amount: core.Money{Cents: 300}, Category: core.Travel, Date: core.NewDate(2024, 1, 2)},
		{ID: "a", Title: "Lunch", Amount: core.Money{Cents: 2000}, Category: core.Food, Date: core.NewDate(2024, 1, 1)},
	}
	if err := repo.ReplaceExpenses(ctx, expenses); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err = repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("stored order not preserved: %+v", got)
	}
}
