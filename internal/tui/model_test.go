package tui

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) Model {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return New(Config{
		Users:          services.NewUserService(repo, bcrypt.MinCost),
		Expenses:       services.NewExpenseService(repo, nil),
		Logger:         applog.New(applog.Config{Output: io.Discard}),
		CurrencySymbol: "$",
		Now:            func() time.Time { return fixedNow },
	})
}

// send delivers msg and runs the resulting commands synchronously until the
// model settles.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	for cmd != nil {
		out := cmd()
		if _, ok := out.(tea.QuitMsg); ok {
			break
		}
		next, cmd = next.Update(out)
	}
	return next.(Model)
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func clearInput(t *testing.T, m Model) Model {
	t.Helper()
	for range []rune(m.input) {
		m = send(t, m, key(tea.KeyBackspace))
	}
	return m
}

func register(t *testing.T, m Model, username, password, budget string) Model {
	t.Helper()
	m = send(t, m, key(tea.KeyDown))
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, username)
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, password)
	m = send(t, m, key(tea.KeyEnter))
	m = clearInput(t, m)
	m = typeText(t, m, budget)
	return send(t, m, key(tea.KeyEnter))
}

func login(t *testing.T, m Model, username, password string) Model {
	t.Helper()
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, username)
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, password)
	return send(t, m, key(tea.KeyEnter))
}

func registerAndLogin(t *testing.T) Model {
	t.Helper()
	m := register(t, newTestModel(t), "alice", "secret", "1000")
	if m.message != msgRegistered || m.step != stepChooseAuth {
		t.Fatalf("after register: step=%v message=%q", m.step, m.message)
	}
	m = login(t, m, "alice", "secret")
	if m.step != stepMenu || m.Session() == nil {
		t.Fatalf("after login: step=%v message=%q", m.step, m.message)
	}
	return m
}

func TestLoginFlow(t *testing.T) {
	m := registerAndLogin(t)
	if m.message != msgLoginOK {
		t.Errorf("message = %q", m.message)
	}
	if m.Session().Username != "alice" || m.Session().Budget.Cents != 1000_00 {
		t.Errorf("session = %+v", m.Session())
	}
	if m.password != "" {
		t.Error("password kept in model after login")
	}
	view := m.View()
	for _, want := range []string{"Logged in as alice", "Add Expense", "Check Expense (Month-wise)", "Remaining Budget", "Profile"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu view missing %q", want)
		}
	}
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func(t *testing.T, m Model) Model
		step    step
		message string
	}{
		{
			name:    "unknown user",
			run:     func(t *testing.T, m Model) Model { return login(t, m, "bob", "pw") },
			step:    stepUsername,
			message: msgInvalidCredentials,
		},
		{
			name: "wrong password",
			run: func(t *testing.T, m Model) Model {
				m = register(t, m, "alice", "secret", "500")
				return login(t, m, "alice", "nope")
			},
			step:    stepUsername,
			message: msgInvalidCredentials,
		},
		{
			name:    "budget too low",
			run:     func(t *testing.T, m Model) Model { return register(t, m, "alice", "secret", "50") },
			step:    stepBudget,
			message: "Monthly budget must be at least 100.",
		},
		{
			name:    "budget not a number",
			run:     func(t *testing.T, m Model) Model { return register(t, m, "alice", "secret", "lots") },
			step:    stepBudget,
			message: "Monthly budget must be at least 100.",
		},
		{
			name: "empty username",
			run: func(t *testing.T, m Model) Model {
				m = send(t, m, key(tea.KeyEnter))
				return send(t, m, key(tea.KeyEnter))
			},
			step:    stepUsername,
			message: "Username is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.run(t, newTestModel(t))
			if m.step != tt.step {
				t.Errorf("step = %v, want %v", m.step, tt.step)
			}
			if m.message != tt.message || !m.isError {
				t.Errorf("message = %q (error=%v), want %q", m.message, m.isError, tt.message)
			}
			if m.Session() != nil {
				t.Error("session set after failed auth")
			}
		})
	}
}

func TestPasswordIsMasked(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, "alice")
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, "hunter2")

	view := m.View()
	if strings.Contains(view, "hunter2") {
		t.Error("password shown in clear text")
	}
	if !strings.Contains(view, "*******") {
		t.Error("password mask missing")
	}
}

func TestTypingQInInputDoesNotQuit(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, "quinn")
	if m.quitting || m.input != "quinn" {
		t.Errorf("quitting=%v input=%q", m.quitting, m.input)
	}
}

func TestQuitFromWelcome(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command is not tea.Quit")
	}
	if got := next.View(); got != "Goodbye!\n" {
		t.Errorf("View() = %q", got)
	}
}

func addExpense(t *testing.T, m Model, down int, description, amount, date string) Model {
	t.Helper()
	m.cursor = menuAdd
	m = send(t, m, key(tea.KeyEnter))
	for i := 0; i < down; i++ {
		m = send(t, m, key(tea.KeyDown))
	}
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, description)
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, amount)
	m = send(t, m, key(tea.KeyEnter))
	if date != "" {
		m = clearInput(t, m)
		m = typeText(t, m, date)
	}
	return send(t, m, key(tea.KeyEnter))
}

func TestAddExpenseAndMonthlyView(t *testing.T) {
	m := registerAndLogin(t)

	// Food, dated today by default
	m = addExpense(t, m, 1, "Groceries", "80", "")
	if m.step != stepMenu || m.message != msgExpenseAdded {
		t.Fatalf("after add: step=%v message=%q", m.step, m.message)
	}
	// Housing
	m = addExpense(t, m, 0, "Rent", "20.50", "2025-03-01")
	// previous month
	m = addExpense(t, m, 2, "Bus Pass", "30", "2025-02-10")

	m.cursor = menuMonthly
	m = send(t, m, key(tea.KeyEnter))
	if m.step != stepMonthly || m.summary == nil {
		t.Fatalf("monthly not loaded: step=%v", m.step)
	}
	if m.month != 3 || m.year != 2025 {
		t.Errorf("period = %d/%d, want 3/2025", m.month, m.year)
	}
	if m.summary.Total.Cents != 100_50 {
		t.Errorf("total = %d", m.summary.Total.Cents)
	}

	view := m.View()
	for _, want := range []string{"March 2025", "Groceries", "$80.00", "2025-03-15", "Rent", "$100.50", "Expenses by Category"} {
		if !strings.Contains(view, want) {
			t.Errorf("monthly view missing %q", want)
		}
	}
	if strings.Contains(view, "Bus Pass") {
		t.Error("February expense listed in March")
	}

	m = send(t, m, key(tea.KeyLeft))
	if m.month != 2 || !strings.Contains(m.View(), "Bus Pass") {
		t.Errorf("February view: month=%d", m.month)
	}

	m = send(t, m, key(tea.KeyDown))
	if m.year != 2024 {
		t.Errorf("year = %d, want 2024", m.year)
	}
	if !strings.Contains(m.View(), msgNoExpenses) {
		t.Error("empty month message missing")
	}
	// 2024 is the first selectable year
	m = send(t, m, key(tea.KeyDown))
	if m.year != 2024 {
		t.Errorf("year moved below first selectable: %d", m.year)
	}

	m = send(t, m, key(tea.KeyEsc))
	if m.step != stepMenu || m.cursor != menuMonthly {
		t.Errorf("esc: step=%v cursor=%d", m.step, m.cursor)
	}
}

func TestAddExpenseValidation(t *testing.T) {
	m := registerAndLogin(t)
	m = send(t, m, key(tea.KeyEnter))
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, "Lunch")
	m = send(t, m, key(tea.KeyEnter))

	m = typeText(t, m, "abc")
	m = send(t, m, key(tea.KeyEnter))
	if m.step != stepAmount || m.message != "Invalid amount." {
		t.Errorf("bad amount: step=%v message=%q", m.step, m.message)
	}

	m = clearInput(t, m)
	m = typeText(t, m, "12")
	m = send(t, m, key(tea.KeyEnter))
	m = clearInput(t, m)
	m = typeText(t, m, "2025-13-40")
	m = send(t, m, key(tea.KeyEnter))
	if m.step != stepDate || m.message != "Invalid date." {
		t.Errorf("bad date: step=%v message=%q", m.step, m.message)
	}

	m = send(t, m, key(tea.KeyEsc))
	if m.step != stepMenu {
		t.Errorf("esc: step=%v", m.step)
	}
}

func TestBudgetAndProfile(t *testing.T) {
	m := registerAndLogin(t)
	m = addExpense(t, m, 1, "Groceries", "287.50", "")

	m.cursor = menuBudget
	m = send(t, m, key(tea.KeyEnter))
	if m.summary == nil || m.summary.Remaining.Cents != 712_50 {
		t.Fatalf("summary = %+v", m.summary)
	}
	view := m.View()
	for _, want := range []string{"Total Expenses", "$287.50", "Remaining Budget", "$712.50", "March 2025"} {
		if !strings.Contains(view, want) {
			t.Errorf("budget view missing %q", want)
		}
	}

	m = send(t, m, key(tea.KeyEsc))
	m.cursor = menuProfile
	m = send(t, m, key(tea.KeyEnter))
	view = m.View()
	for _, want := range []string{"Username: alice", "Monthly Budget: $1000.00", "Logout"} {
		if !strings.Contains(view, want) {
			t.Errorf("profile view missing %q", want)
		}
	}

	m = send(t, m, key(tea.KeyEnter))
	if m.Session() != nil || m.step != stepChooseAuth || m.message != msgLoggedOut {
		t.Errorf("logout: session=%v step=%v message=%q", m.Session(), m.step, m.message)
	}
}

func TestStaleSummaryIgnored(t *testing.T) {
	m := registerAndLogin(t)
	m.cursor = menuMonthly
	m = send(t, m, key(tea.KeyEnter))

	next, _ := m.Update(summaryMsg{step: stepMonthly, month: 1, year: 2025})
	got := next.(Model)
	if got.summary.Month != m.summary.Month || got.summary.Year != m.summary.Year {
		t.Errorf("stale summary replaced current one: %d/%d", got.summary.Month, got.summary.Year)
	}
}

func TestRenderChart(t *testing.T) {
	m := registerAndLogin(t)
	m = addExpense(t, m, 1, "Groceries", "100", "")
	m = addExpense(t, m, 0, "Rent", "50", "")
	m.cursor = menuMonthly
	m = send(t, m, key(tea.KeyEnter))

	lines := strings.Split(strings.TrimRight(renderChart(*m.summary, "$"), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("chart lines = %d, want 2", len(lines))
	}
	tests := []struct {
		line   string
		prefix string
		bars   int
	}{
		{lines[0], "Housing", barColumns / 2},
		{lines[1], "Food", barColumns},
	}
	for _, tt := range tests {
		if !strings.HasPrefix(tt.line, tt.prefix) {
			t.Errorf("line %q does not start with %q", tt.line, tt.prefix)
		}
		if got := strings.Count(tt.line, "█"); got != tt.bars {
			t.Errorf("%s bars = %d, want %d", tt.prefix, got, tt.bars)
		}
	}
}

func TestLongDescriptionRejectedBeforeSave(t *testing.T) {
	m := registerAndLogin(t)
	m = send(t, m, key(tea.KeyEnter))
	m = send(t, m, key(tea.KeyEnter))
	m = typeText(t, m, strings.Repeat("é", 201))
	m = send(t, m, key(tea.KeyEnter))

	if m.step != stepDescription || !m.isError || m.message != "Description too long (max 200 characters)." {
		t.Fatalf("step=%v message=%q", m.step, m.message)
	}

	// fixing the text continues the form
	m = send(t, m, key(tea.KeyBackspace))
	m = send(t, m, key(tea.KeyEnter))
	if m.step != stepAmount || m.isError {
		t.Fatalf("after fix: step=%v message=%q", m.step, m.message)
	}
	m = typeText(t, m, "5")
	m = send(t, m, key(tea.KeyEnter))
	m = send(t, m, key(tea.KeyEnter))
	if m.step != stepMenu || m.message != msgExpenseAdded {
		t.Fatalf("save: step=%v message=%q", m.step, m.message)
	}
}
