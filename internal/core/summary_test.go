package core

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	expenses := []Expense{
		{Category: Food, Amount: Money{Cents: 1500}},
		{Category: Housing, Amount: Money{Cents: 50000}},
		{Category: Food, Amount: Money{Cents: 500}},
		{Category: "Legacy", Amount: Money{Cents: 100}},
	}
	s := Summarize(Money{Cents: 100000}, 2025, 6, expenses)

	if s.Total.Cents != 52100 {
		t.Fatalf("total = %d", s.Total.Cents)
	}
	if s.Remaining.Cents != 100000-52100 {
		t.Fatalf("remaining = %d", s.Remaining.Cents)
	}
	if s.Budget.Cents-s.Remaining.Cents != s.Total.Cents {
		t.Fatal("budget - remaining must equal total")
	}
	want := []CategoryAmount{
		{Housing, Money{Cents: 50000}},
		{Food, Money{Cents: 2000}},
		{"Legacy", Money{Cents: 100}},
	}
	if len(s.ByCategory) != len(want) {
		t.Fatalf("by category = %+v", s.ByCategory)
	}
	for i := range want {
		if s.ByCategory[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, s.ByCategory[i], want[i])
		}
	}
	if s.MaxCategory().Cents != 50000 {
		t.Fatalf("max = %d", s.MaxCategory().Cents)
	}
	if s.OverBudget() {
		t.Fatal("should not be over budget")
	}
}

func TestSummarizeEmptyAndOverBudget(t *testing.T) {
	s := Summarize(Money{Cents: 10000}, 2025, 1, nil)
	if s.Total.Cents != 0 || s.Remaining.Cents != 10000 || len(s.ByCategory) != 0 {
		t.Fatalf("unexpected empty summary %+v", s)
	}

	s = Summarize(Money{Cents: 10000}, 2025, 1, []Expense{{Category: Gifts, Amount: Money{Cents: 10001}}})
	if !s.OverBudget() || s.Remaining.Cents != -1 {
		t.Fatalf("expected over budget by 1 cent, got %+v", s)
	}
}

func TestSelectableYears(t *testing.T) {
	got := SelectableYears(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if len(got) != 3 || got[0] != 2024 || got[2] != 2026 {
		t.Fatalf("got %v", got)
	}
	if got := SelectableYears(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)); len(got) != 1 || got[0] != 2020 {
		t.Fatalf("got %v", got)
	}
}

func TestValidateMonthYear(t *testing.T) {
	if err := ValidateMonthYear(12, 2025); err != nil {
		t.Fatal(err)
	}
	for _, tc := range [][2]int{{0, 2025}, {13, 2025}, {1, 0}} {
		if err := ValidateMonthYear(tc[0], tc[1]); err == nil {
			t.Fatalf("expected error for %v", tc)
		}
	}
	if MonthName(2) != "February" {
		t.Fatal(MonthName(2))
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		amount, max int64
		want        int
	}{
		{200_00, 200_00, 100},
		{50_00, 200_00, 25},
		{2050, 8000, 26},
		{1_00, 200_00, 2},
		{0, 200_00, 0},
		{5_00, 0, 0},
		{300_00, 200_00, 100},
	}
	for _, tt := range tests {
		if got := BarWidth(Money{Cents: tt.amount}, Money{Cents: tt.max}); got != tt.want {
			t.Errorf("BarWidth(%d, %d) = %d, want %d", tt.amount, tt.max, got, tt.want)
		}
	}
}
