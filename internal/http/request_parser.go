// Package http serves the web UI.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters. Missing,
// malformed or out-of-range values fall back to now's month.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	if core.ValidateMonthYear(params.Month, params.Year) != nil {
		return MonthParams{Year: now.Year(), Month: int(now.Month())}
	}
	return params
}

// ExpenseForm is the parsed add-expense form.
type ExpenseForm struct {
	Category    core.Category
	Description string
	Amount      core.Money
	Date        core.Date
}

// ParseExpenseForm reads category, description, amount and date from a
// parsed form. An empty date means today.
func ParseExpenseForm(form url.Values, today core.Date) (ExpenseForm, error) {
	var f ExpenseForm
	var err error

	if f.Category, err = core.ParseCategory(sanitizeInput(form.Get("category"))); err != nil {
		return ExpenseForm{}, err
	}
	f.Description = sanitizeInput(form.Get("description"))
	if f.Amount, err = core.ParseMoney(form.Get("amount")); err != nil {
		return ExpenseForm{}, err
	}

	f.Date = today
	if v := strings.TrimSpace(form.Get("date")); v != "" {
		if f.Date, err = core.ParseDate(v); err != nil {
			return ExpenseForm{}, err
		}
	}
	return f, nil
}

// Expense converts the form into a domain expense.
func (f ExpenseForm) Expense() core.Expense {
	return core.Expense{
		Category:    f.Category,
		Description: f.Description,
		Amount:      f.Amount,
		Date:        f.Date,
	}
}

// RegistrationForm is the parsed register form. The password is not
// sanitized or trimmed.
type RegistrationForm struct {
	Username string
	Password string
	Budget   core.Money
}

func ParseRegistrationForm(form url.Values) (RegistrationForm, error) {
	f := RegistrationForm{
		Username: sanitizeInput(form.Get("username")),
		Password: form.Get("password"),
	}
	budget, err := core.ParseMoney(form.Get("budget"))
	if err != nil {
		return RegistrationForm{}, core.ErrBudgetTooLow
	}
	f.Budget = budget
	return f, nil
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *Fragment {
	if err := r.ParseForm(); err != nil {
		return ErrorFragment(http.StatusBadRequest, "Invalid request format")
	}
	return nil
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
