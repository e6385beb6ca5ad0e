package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
)

// ExpenseStore is the persistence needed by ExpenseService.
type ExpenseStore interface {
	AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpenses(ctx context.Context, userID int64, month, year int) ([]core.Expense, error)
}

// AlertPublisher sends budget alerts; *amqp.Client implements it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// ExpenseService records expenses and builds month summaries.
type ExpenseService struct {
	store     ExpenseStore
	publisher AlertPublisher
}

// NewExpenseService creates the service. publisher may be nil, in which case
// no budget alerts are sent.
func NewExpenseService(store ExpenseStore, publisher AlertPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// AddExpense stores e for user. When alerts are enabled and the month of the
// expense is now over budget an alert is published; publish failures are
// logged and never fail the request.
func (s *ExpenseService) AddExpense(ctx context.Context, user core.User, e core.Expense) (core.Expense, error) {
	e.UserID = user.ID
	e.Description = core.NormalizeDescription(e.Description)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if s.publisher != nil {
		s.checkBudget(ctx, user, saved)
	}
	return saved, nil
}

func (s *ExpenseService) checkBudget(ctx context.Context, user core.User, saved core.Expense) {
	year, month := saved.Date.Year(), int(saved.Date.Month())
	summary, err := s.MonthSummary(ctx, user, month, year)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute month total for budget alert",
			"user_id", user.ID, "error", err)
		return
	}
	if !summary.OverBudget() {
		return
	}

	msg := &amqp.BudgetAlertMessage{
		UserID:      user.ID,
		Username:    user.Username,
		ExpenseID:   saved.ID,
		Year:        year,
		Month:       month,
		BudgetCents: summary.Budget.Cents,
		TotalCents:  summary.Total.Cents,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"user_id", user.ID, "expense_id", saved.ID, "error", err)
	}
}

// ListMonth returns the user's expenses for month/year ordered by date.
func (s *ExpenseService) ListMonth(ctx context.Context, userID int64, month, year int) ([]core.Expense, error) {
	if err := core.ValidateMonthYear(month, year); err != nil {
		return nil, err
	}
	expenses, err := s.store.GetExpenses(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// MonthSummary lists the month and totals it against the user's budget.
func (s *ExpenseService) MonthSummary(ctx context.Context, user core.User, month, year int) (core.MonthSummary, error) {
	expenses, err := s.ListMonth(ctx, user.ID, month, year)
	if err != nil {
		return core.MonthSummary{}, err
	}
	return core.Summarize(user.Budget, year, month, expenses), nil
}

// RemainingBudget summarises the calendar month containing now.
func (s *ExpenseService) RemainingBudget(ctx context.Context, user core.User, now time.Time) (core.MonthSummary, error) {
	return s.MonthSummary(ctx, user, int(now.Month()), now.Year())
}
