package core

import (
	"sort"
	"time"
)

// FirstSelectableYear is the earliest year offered by the month-wise view.
const FirstSelectableYear = 2024

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthSummary is the month-wise view of one user's expenses.
type MonthSummary struct {
	Year       int
	Month      int // 1-12
	Expenses   []Expense
	Total      Money
	ByCategory []CategoryAmount
	Budget     Money
	Remaining  Money
}

// Summarize totals the given expenses and compares them with the budget.
// ByCategory follows the fixed category order and skips empty categories.
func Summarize(budget Money, year, month int, expenses []Expense) MonthSummary {
	s := MonthSummary{
		Year:     year,
		Month:    month,
		Expenses: expenses,
		Budget:   budget,
	}

	sums := make(map[Category]int64, len(categories))
	for _, e := range expenses {
		s.Total.Cents += e.Amount.Cents
		sums[e.Category] += e.Amount.Cents
	}
	for _, c := range categories {
		if cents, ok := sums[c]; ok {
			s.ByCategory = append(s.ByCategory, CategoryAmount{Category: c, Amount: Money{Cents: cents}})
			delete(sums, c)
		}
	}
	// rows written outside the fixed set still count towards the chart
	extra := make([]Category, 0, len(sums))
	for c := range sums {
		extra = append(extra, c)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, c := range extra {
		s.ByCategory = append(s.ByCategory, CategoryAmount{Category: c, Amount: Money{Cents: sums[c]}})
	}

	s.Remaining = budget.Sub(s.Total)
	return s
}

// OverBudget reports whether the month total exceeds the budget.
func (s MonthSummary) OverBudget() bool {
	return s.Total.Cents > s.Budget.Cents
}

// MaxCategory returns the largest category amount, used to scale charts.
func (s MonthSummary) MaxCategory() Money {
	var max Money
	for _, c := range s.ByCategory {
		if c.Amount.Cents > max.Cents {
			max = c.Amount
		}
	}
	return max
}

// ValidateMonthYear checks month is 1-12 and year is a plausible calendar year.
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return ErrInvalidMonthYear
	}
	return nil
}

// MonthName returns the English month name, e.g. "January".
func MonthName(month int) string {
	return time.Month(month).String()
}

// SelectableYears returns FirstSelectableYear through now's year.
func SelectableYears(now time.Time) []int {
	last := now.Year()
	if last < FirstSelectableYear {
		return []int{last}
	}
	years := make([]int, 0, last-FirstSelectableYear+1)
	for y := FirstSelectableYear; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// BarWidth scales amount against max as a percentage rounded to the nearest
// integer. Non-zero amounts are at least 2 so very small bars stay visible.
func BarWidth(amount, max Money) int {
	if max.Cents <= 0 || amount.Cents <= 0 {
		return 0
	}
	width := int((amount.Cents*100 + max.Cents/2) / max.Cents)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
