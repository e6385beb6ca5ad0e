package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"expensetracker/internal/core"
)

// barColumns is the width of a full-scale chart bar.
const barColumns = 30

const descriptionColumns = 24

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Personal Expense Tracker"))
	b.WriteString("\n")
	if m.session != nil {
		b.WriteString(infoStyle.Render("Logged in as " + m.session.Username))
		b.WriteString("\n\n")
	}

	switch m.step {
	case stepChooseAuth:
		b.WriteString(headerStyle.Render("Welcome"))
		b.WriteString("\n\n")
		b.WriteString(m.renderList(authItems))
	case stepUsername, stepPassword, stepBudget:
		b.WriteString(m.renderAuthForm())
	case stepAuthenticating:
		b.WriteString(infoStyle.Render("Checking credentials..."))
	case stepMenu:
		b.WriteString(headerStyle.Render("Menu"))
		b.WriteString("\n\n")
		b.WriteString(m.renderList(menuItems))
	case stepCategory:
		b.WriteString(headerStyle.Render("Add New Expense"))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("Category:"))
		b.WriteString("\n")
		names := make([]string, 0, len(core.Categories()))
		for _, c := range core.Categories() {
			names = append(names, c.String())
		}
		b.WriteString(m.renderList(names))
	case stepDescription, stepAmount, stepDate:
		b.WriteString(m.renderExpenseForm())
	case stepSaving:
		b.WriteString(infoStyle.Render("Saving expense..."))
	case stepMonthly:
		b.WriteString(m.renderMonthly())
	case stepBudgetView:
		b.WriteString(m.renderBudget())
	case stepProfile:
		b.WriteString(m.renderProfile())
	}

	if m.message != "" {
		b.WriteString("\n\n")
		if m.isError {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(successStyle.Render(m.message))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + item))
		} else {
			b.WriteString(normalStyle.Render(item))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderAuthForm() string {
	var b strings.Builder
	if m.mode == modeRegister {
		b.WriteString(headerStyle.Render("Register"))
	} else {
		b.WriteString(headerStyle.Render("Login"))
	}
	b.WriteString("\n\n")

	field := func(label, value string, active bool) {
		b.WriteString(promptStyle.Render(label))
		b.WriteString(" ")
		if active {
			b.WriteString(inputStyle.Render(value + "█"))
		} else {
			b.WriteString(value)
		}
		b.WriteString("\n")
	}

	switch m.step {
	case stepUsername:
		field("Username:", m.input, true)
	case stepPassword:
		field("Username:", m.username, false)
		field("Password:", strings.Repeat("*", len([]rune(m.input))), true)
	case stepBudget:
		field("Username:", m.username, false)
		field("Password:", strings.Repeat("*", len([]rune(m.password))), false)
		field("Monthly Budget:", m.input, true)
	}
	return b.String()
}

func (m Model) renderExpenseForm() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Add New Expense"))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("Category:") + " " + m.draft.category.String() + "\n")

	switch m.step {
	case stepDescription:
		b.WriteString(promptStyle.Render("Description:") + " " + inputStyle.Render(m.input+"█") + "\n")
	case stepAmount:
		b.WriteString(promptStyle.Render("Description:") + " " + m.draft.description + "\n")
		b.WriteString(promptStyle.Render("Amount:") + " " + inputStyle.Render(m.input+"█") + "\n")
	case stepDate:
		b.WriteString(promptStyle.Render("Description:") + " " + m.draft.description + "\n")
		b.WriteString(promptStyle.Render("Amount:") + " " + m.draft.amount.Format(m.currency) + "\n")
		b.WriteString(promptStyle.Render("Date (YYYY-MM-DD):") + " " + inputStyle.Render(m.input+"█") + "\n")
	}
	return b.String()
}

func (m Model) renderMonthly() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Monthly Expense Overview"))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(fmt.Sprintf("< %s %d >", core.MonthName(m.month), m.year)))
	b.WriteString("\n\n")

	if m.loading || m.summary == nil {
		b.WriteString(infoStyle.Render("Loading..."))
		return b.String()
	}
	s := m.summary
	if len(s.Expenses) == 0 {
		b.WriteString(infoStyle.Render(msgNoExpenses))
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %-*s %12s  %s", "Category", descriptionColumns, "Description", "Amount", "Date")))
	b.WriteString("\n")
	for _, e := range s.Expenses {
		b.WriteString(fmt.Sprintf("%-16s %-*s %12s  %s\n",
			e.Category, descriptionColumns, truncate(e.Description, descriptionColumns),
			e.Amount.Format(m.currency), e.Date.String()))
	}
	b.WriteString(fmt.Sprintf("\n%-16s %-*s %12s\n", "Total", descriptionColumns, "", s.Total.Format(m.currency)))

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Expenses by Category"))
	b.WriteString("\n")
	b.WriteString(renderChart(*s, m.currency))
	return b.String()
}

// renderChart draws one horizontal bar per category, scaled to the largest.
func renderChart(s core.MonthSummary, currency string) string {
	var b strings.Builder
	max := s.MaxCategory()
	for _, c := range s.ByCategory {
		cols := core.BarWidth(c.Amount, max) * barColumns / 100
		if cols < 1 && c.Amount.Cents > 0 {
			cols = 1
		}
		b.WriteString(fmt.Sprintf("%-16s %s %s\n",
			c.Category, barStyle.Render(strings.Repeat("█", cols)+strings.Repeat(" ", barColumns-cols)),
			c.Amount.Format(currency)))
	}
	return b.String()
}

func (m Model) renderBudget() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Remaining Budget"))
	b.WriteString("\n\n")
	if m.loading || m.summary == nil {
		b.WriteString(infoStyle.Render("Loading..."))
		return b.String()
	}
	s := m.summary
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s %d", core.MonthName(s.Month), s.Year)))
	b.WriteString("\n")

	remaining := s.Remaining.Format(m.currency)
	if s.OverBudget() {
		remaining = errorStyle.Render(remaining)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		metricStyle.Render("Total Expenses\n"+s.Total.Format(m.currency)),
		metricStyle.Render("Remaining Budget\n"+remaining),
	))
	return b.String()
}

func (m Model) renderProfile() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("User Profile"))
	b.WriteString("\n\n")
	if m.session != nil {
		b.WriteString("Username: " + m.session.Username + "\n")
		b.WriteString("Monthly Budget: " + m.session.Budget.Format(m.currency) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(selectedStyle.Render("> Logout"))
	return b.String()
}

func (m Model) help() string {
	switch m.step {
	case stepChooseAuth, stepMenu:
		return "↑/↓: navigate • enter: select • q: quit"
	case stepCategory:
		return "↑/↓: navigate • enter: select • esc: back"
	case stepMonthly:
		return "←/→: month • ↑/↓: year • esc: back"
	case stepBudgetView:
		return "r: refresh • esc: back"
	case stepProfile:
		return "enter: logout • esc: back"
	case stepAuthenticating, stepSaving:
		return "ctrl+c: quit"
	}
	return "enter: confirm • esc: back • ctrl+c: quit"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
