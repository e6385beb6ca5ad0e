package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"expensetracker/internal/core"
)

// opTimeout bounds every storage round trip started from the UI.
const opTimeout = 10 * time.Second

func (m Model) loginCmd() tea.Cmd {
	users, username, password := m.users, m.username, m.password
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		user, err := users.Login(ctx, username, password)
		if err != nil {
			return errMsg{err: err, back: stepUsername}
		}
		return loginResultMsg{user: user}
	}
}

func (m Model) registerCmd(budget core.Money) tea.Cmd {
	users, username, password := m.users, m.username, m.password
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		user, err := users.Register(ctx, username, password, budget)
		if err != nil {
			return errMsg{err: err, back: stepBudget}
		}
		return registeredMsg{user: user}
	}
}

func (m Model) saveCmd(e core.Expense) tea.Cmd {
	expenses, user := m.expenses, m.session.User()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		saved, err := expenses.AddExpense(ctx, user, e)
		if err != nil {
			return errMsg{err: err, back: stepDate}
		}
		return savedMsg{expense: saved}
	}
}

func (m Model) monthCmd(month, year int) tea.Cmd {
	expenses, user := m.expenses, m.session.User()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		summary, err := expenses.MonthSummary(ctx, user, month, year)
		if err != nil {
			return errMsg{err: err, back: stepMonthly}
		}
		return summaryMsg{step: stepMonthly, month: month, year: year, summary: summary}
	}
}

func (m Model) budgetCmd() tea.Cmd {
	expenses, user, now := m.expenses, m.session.User(), m.now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		summary, err := expenses.RemainingBudget(ctx, user, now)
		if err != nil {
			return errMsg{err: err, back: stepBudgetView}
		}
		return summaryMsg{step: stepBudgetView, month: summary.Month, year: summary.Year, summary: summary}
	}
}
