// Package tui is the terminal front end: the same login/register flow and
// four-view menu as the web UI, as a bubbletea program.
package tui

import (
	"context"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

const (
	msgLoginOK            = "Login successful!"
	msgInvalidCredentials = "Invalid credentials."
	msgRegistered         = "User registered successfully!"
	msgExpenseAdded       = "Expense added successfully!"
	msgLoggedOut          = "You have been logged out!"
	msgNoExpenses         = "No expenses recorded for this month."
)

// UserService is the account API the terminal UI needs.
type UserService interface {
	Register(ctx context.Context, username, password string, budget core.Money) (core.User, error)
	Login(ctx context.Context, username, password string) (*core.User, error)
}

// ExpenseService is the expense API the terminal UI needs.
type ExpenseService interface {
	AddExpense(ctx context.Context, user core.User, e core.Expense) (core.Expense, error)
	MonthSummary(ctx context.Context, user core.User, month, year int) (core.MonthSummary, error)
	RemainingBudget(ctx context.Context, user core.User, now time.Time) (core.MonthSummary, error)
}

type Config struct {
	Users          UserService
	Expenses       ExpenseService
	Logger         *applog.Logger
	CurrencySymbol string
	// Now defaults to time.Now.
	Now func() time.Time
}

type step int

const (
	stepChooseAuth step = iota
	stepUsername
	stepPassword
	stepBudget
	stepAuthenticating
	stepMenu
	stepCategory
	stepDescription
	stepAmount
	stepDate
	stepSaving
	stepMonthly
	stepBudgetView
	stepProfile
)

// isInput reports whether the step reads free text.
func (s step) isInput() bool {
	switch s {
	case stepUsername, stepPassword, stepBudget, stepDescription, stepAmount, stepDate:
		return true
	}
	return false
}

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

var (
	authItems = []string{"Login", "Register"}
	menuItems = []string{"Add Expense", "Check Expense (Month-wise)", "Remaining Budget", "Profile"}
)

// Menu entries, in menuItems order.
const (
	menuAdd = iota
	menuMonthly
	menuBudget
	menuProfile
)

type draft struct {
	category    core.Category
	description string
	amount      core.Money
}

// Model is the bubbletea model. Session is nil until a login succeeds.
type Model struct {
	users    UserService
	expenses ExpenseService
	logger   *applog.Logger
	currency string
	now      func() time.Time

	step     step
	mode     authMode
	cursor   int
	input    string
	username string
	password string

	session *session.Session
	draft   draft

	month   int
	year    int
	summary *core.MonthSummary
	loading bool

	message  string
	isError  bool
	quitting bool
}

type (
	loginResultMsg struct{ user *core.User }
	registeredMsg  struct{ user core.User }
	savedMsg       struct{ expense core.Expense }
	summaryMsg     struct {
		step        step
		month, year int
		summary     core.MonthSummary
	}
	errMsg struct {
		err  error
		back step
	}
)

func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Output: io.Discard})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		users:    cfg.Users,
		expenses: cfg.Expenses,
		logger:   logger.WithComponent(applog.ComponentTUI),
		currency: cfg.CurrencySymbol,
		now:      now,
		step:     stepChooseAuth,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Session returns the logged-in user, or nil.
func (m Model) Session() *session.Session {
	return m.session
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.step.isInput() {
			return m.updateInput(msg)
		}
		return m.updateSelect(msg)

	case loginResultMsg:
		m.password = ""
		if msg.user == nil {
			m.logger.Warn("Login failed", applog.FieldUsername, m.username)
			m.step = stepUsername
			m.input = ""
			return m.fail(msgInvalidCredentials), nil
		}
		m.session = session.New(*msg.user)
		m.logger.Info("Login successful", applog.FieldUserID, msg.user.ID, applog.FieldUsername, msg.user.Username)
		m.step = stepMenu
		m.cursor = 0
		return m.ok(msgLoginOK), nil

	case registeredMsg:
		m.logger.Info("User registered", applog.FieldUserID, msg.user.ID, applog.FieldUsername, msg.user.Username)
		m.password = ""
		m.mode = modeLogin
		m.step = stepChooseAuth
		m.cursor = int(modeLogin)
		return m.ok(msgRegistered), nil

	case savedMsg:
		m.logger.Info("Expense created",
			applog.FieldExpenseID, msg.expense.ID,
			applog.FieldCategory, msg.expense.Category.String(),
			applog.FieldAmountCents, msg.expense.Amount.Cents)
		m.draft = draft{}
		m.step = stepMenu
		m.cursor = menuAdd
		return m.ok(msgExpenseAdded), nil

	case summaryMsg:
		// drop results for a view or period that is no longer shown
		if msg.step != m.step || (msg.step == stepMonthly && (msg.month != m.month || msg.year != m.year)) {
			return m, nil
		}
		s := msg.summary
		m.summary = &s
		m.loading = false
		return m, nil

	case errMsg:
		m.loading = false
		m.step = msg.back
		if core.IsValidation(msg.err) {
			return m.fail(sentence(msg.err.Error())), nil
		}
		m.logger.Error("Operation failed", applog.FieldError, msg.err)
		return m.fail("Something went wrong: " + msg.err.Error()), nil
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input = ""
		m.message = ""
		if m.session == nil {
			m.step = stepChooseAuth
			m.cursor = int(m.mode)
		} else {
			m.step = stepMenu
			m.cursor = menuAdd
		}
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyEnter:
		return m.submitInput()
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input
	switch m.step {
	case stepUsername:
		if strings.TrimSpace(value) == "" {
			return m.fail(sentence(core.ErrEmptyUsername.Error())), nil
		}
		m.username = strings.TrimSpace(value)
		m.input = ""
		m.message = ""
		m.step = stepPassword

	case stepPassword:
		if value == "" {
			return m.fail(sentence(core.ErrEmptyPassword.Error())), nil
		}
		m.password = value
		m.input = ""
		if m.mode == modeLogin {
			m.step = stepAuthenticating
			return m, m.loginCmd()
		}
		m.step = stepBudget
		m.input = core.MinBudget.Decimal().String()

	case stepBudget:
		budget, err := core.ParseMoney(value)
		if err != nil {
			return m.fail(sentence(core.ErrBudgetTooLow.Error())), nil
		}
		m.step = stepAuthenticating
		return m, m.registerCmd(budget)

	case stepDescription:
		if err := core.ValidateDescription(strings.TrimSpace(value)); err != nil {
			return m.fail(sentence(err.Error())), nil
		}
		m.message = ""
		m.draft.description = value
		m.input = ""
		m.step = stepAmount

	case stepAmount:
		amount, err := core.ParseMoney(value)
		if err != nil {
			return m.fail(sentence(err.Error())), nil
		}
		m.draft.amount = amount
		m.message = ""
		m.input = m.today().String()
		m.step = stepDate

	case stepDate:
		date := m.today()
		if strings.TrimSpace(value) != "" {
			d, err := core.ParseDate(value)
			if err != nil {
				return m.fail(sentence(core.ErrInvalidDate.Error())), nil
			}
			date = d
		}
		m.input = ""
		m.step = stepSaving
		return m, m.saveCmd(core.Expense{
			Category:    m.draft.category,
			Description: m.draft.description,
			Amount:      m.draft.amount,
			Date:        date,
		})
	}
	return m, nil
}

func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.step {
	case stepChooseAuth:
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k", "down", "j", "left", "right":
			m.cursor = 1 - m.cursor
		case "enter":
			m.mode = authMode(m.cursor)
			m.username, m.password, m.input = "", "", ""
			m.message = ""
			m.step = stepUsername
		}

	case stepMenu:
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case "enter":
			return m.open(m.cursor)
		}

	case stepCategory:
		categories := core.Categories()
		switch key {
		case "esc":
			m.step = stepMenu
			m.cursor = menuAdd
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(categories)-1 {
				m.cursor++
			}
		case "enter":
			m.draft.category = categories[m.cursor]
			m.input = ""
			m.step = stepDescription
		}

	case stepMonthly:
		month, year := m.month, m.year
		years := core.SelectableYears(m.now())
		switch key {
		case "esc", "q":
			m.step = stepMenu
			m.cursor = menuMonthly
			return m, nil
		case "left", "h":
			month--
			if month < 1 {
				month = 12
			}
		case "right", "l":
			month++
			if month > 12 {
				month = 1
			}
		case "up", "k":
			if year < years[len(years)-1] {
				year++
			}
		case "down", "j":
			if year > years[0] {
				year--
			}
		}
		if month != m.month || year != m.year {
			m.month, m.year = month, year
			m.loading = true
			return m, m.monthCmd(month, year)
		}

	case stepBudgetView:
		switch key {
		case "esc", "q", "enter":
			m.step = stepMenu
			m.cursor = menuBudget
		case "r":
			m.loading = true
			return m, m.budgetCmd()
		}

	case stepProfile:
		switch key {
		case "esc", "q":
			m.step = stepMenu
			m.cursor = menuProfile
		case "enter":
			return m.logout(), nil
		}
	}
	return m, nil
}

// open switches to the menu entry at index.
func (m Model) open(index int) (tea.Model, tea.Cmd) {
	m.message = ""
	m.summary = nil
	m.cursor = 0
	switch index {
	case menuAdd:
		m.draft = draft{}
		m.step = stepCategory
	case menuMonthly:
		now := m.now()
		m.month, m.year = int(now.Month()), now.Year()
		m.step = stepMonthly
		m.loading = true
		return m, m.monthCmd(m.month, m.year)
	case menuBudget:
		m.step = stepBudgetView
		m.loading = true
		return m, m.budgetCmd()
	case menuProfile:
		m.step = stepProfile
	}
	return m, nil
}

func (m Model) logout() Model {
	if m.session != nil {
		m.logger.Info("User logged out", applog.FieldUserID, m.session.UserID)
	}
	m.session = nil
	m.summary = nil
	m.draft = draft{}
	m.username, m.password, m.input = "", "", ""
	m.mode = modeLogin
	m.step = stepChooseAuth
	m.cursor = int(modeLogin)
	return m.ok(msgLoggedOut)
}

func (m Model) today() core.Date {
	now := m.now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}

func (m Model) ok(msg string) Model {
	m.message, m.isError = msg, false
	return m
}

func (m Model) fail(msg string) Model {
	m.message, m.isError = msg, true
	return m
}

// sentence capitalises an error message and ends it with a period.
func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:]) + "."
}
