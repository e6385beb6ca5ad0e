package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"expensetracker/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRegisterAndFindUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.RegisterUser(ctx, "alice", "hash-1", core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := repo.RegisterUser(ctx, "alice", "hash-2", core.Money{Cents: 20000})
	if err != nil {
		t.Fatalf("duplicate username must be accepted: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct ids")
	}

	recs, err := repo.FindUsersByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(recs) != 2 || recs[0].User.ID != first.ID || recs[1].PasswordHash != "hash-2" {
		t.Fatalf("unexpected records %+v", recs)
	}

	none, err := repo.FindUsersByUsername(ctx, "bob")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no rows, got %v %v", none, err)
	}
}

func TestGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.RegisterUser(ctx, "carol", "h", core.Money{Cents: 12345})
	if err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != u || got.Budget.Cents != 12345 {
		t.Fatalf("got %+v want %+v", got, u)
	}

	if _, err := repo.GetUser(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetExpensesFiltersByUserAndMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	add := func(userID int64, cents int64, d core.Date, desc string) {
		t.Helper()
		_, err := repo.AddExpense(ctx, core.Expense{
			UserID:      userID,
			Category:    core.Food,
			Description: desc,
			Amount:      core.Money{Cents: cents},
			Date:        d,
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	add(1, 300, core.NewDate(2025, 3, 20), "Late")
	add(1, 100, core.NewDate(2025, 3, 1), "Early")
	add(1, 200, core.NewDate(2025, 4, 1), "Next Month")
	add(1, 400, core.NewDate(2024, 3, 5), "Last Year")
	add(2, 500, core.NewDate(2025, 3, 10), "Other User")

	got, err := repo.GetExpenses(ctx, 1, 3, 2025)
	if err != nil {
		t.Fatalf("get expenses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}
	if got[0].Description != "Early" || got[1].Description != "Late" {
		t.Fatalf("expected date order, got %+v", got)
	}
	if got[0].Date.String() != "2025-03-01" || got[0].Amount.Cents != 100 || got[0].Category != core.Food {
		t.Fatalf("round trip mismatch: %+v", got[0])
	}

	empty, err := repo.GetExpenses(ctx, 1, 5, 2025)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty month, got %v %v", empty, err)
	}
}

func TestGetExpensesEarlyYears(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		year  int
		month int
	}{
		{"three digit year", 999, 3},
		{"two digit year", 42, 11},
		{"four digit year", 1000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved, err := repo.AddExpense(ctx, core.Expense{
				UserID:   7,
				Category: core.Gifts,
				Amount:   core.Money{Cents: 1500},
				Date:     core.NewDate(tt.year, tt.month, 1),
			})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			got, err := repo.GetExpenses(ctx, 7, tt.month, tt.year)
			if err != nil {
				t.Fatalf("get expenses: %v", err)
			}
			if len(got) != 1 || got[0].ID != saved.ID {
				t.Fatalf("expected expense %d back, got %+v", saved.ID, got)
			}
		})
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RegisterUser(context.Background(), "dave", "h", core.Money{Cents: 10000}); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	recs, err := repo.FindUsersByUsername(context.Background(), "dave")
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected persisted user, got %v %v", recs, err)
	}
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}
