package http

import (
	"net/http"
	"strconv"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

const (
	msgExpenseAdded = "Expense added successfully!"
	msgNoExpenses   = "No expenses recorded for this month."
)

type expenseFormData struct {
	Categories  []core.Category
	Category    string
	Description string
	Amount      string
	Date        string
}

func (s *Server) newExpenseData() expenseFormData {
	return expenseFormData{
		Categories: core.Categories(),
		Category:   string(core.Housing),
		Date:       s.today().String(),
	}
}

func (s *Server) today() core.Date {
	now := s.now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}

func (s *Server) handleNewExpense(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "add_expense.html", page{
		Title:   "Add New Expense",
		Active:  "add",
		Session: session.FromContext(r.Context()),
		Data:    s.newExpenseData(),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}
	ctx := r.Context()
	sess := session.FromContext(ctx)
	failPage := func(msg string) page {
		data := s.newExpenseData()
		data.Category = sanitizeInput(r.PostForm.Get("category"))
		data.Description = sanitizeInput(r.PostForm.Get("description"))
		data.Amount = sanitizeInput(r.PostForm.Get("amount"))
		if d := sanitizeInput(r.PostForm.Get("date")); d != "" {
			data.Date = d
		}
		return page{Title: "Add New Expense", Active: "add", Session: sess, Error: msg, Data: data}
	}

	form, err := ParseExpenseForm(r.PostForm, s.today())
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "add_expense.html", failPage(capitalize(err.Error())))
		return
	}

	saved, err := s.expenses.AddExpense(ctx, sess.User(), form.Expense())
	if err != nil {
		if core.IsValidation(err) {
			s.fail(w, r, http.StatusUnprocessableEntity, "add_expense.html", failPage(capitalize(err.Error())))
			return
		}
		s.events.LogError(ctx, "Expense save failed", err, applog.ComponentExpense, applog.OpCreate,
			applog.NewFields().WithUser(sess.UserID, sess.Username))
		s.fail(w, r, http.StatusInternalServerError, "add_expense.html", failPage("Failed to save expense."))
		return
	}

	s.events.LogExpenseCreated(ctx, sess.UserID, saved.ID, saved.Category.String(), saved.Amount.Cents, saved.Date.String())

	if isHTMX(r) {
		FlashFragment(msgExpenseAdded).ExpenseCreated(saved.Date).ResetForm().Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "add_expense.html", page{
		Title:   "Add New Expense",
		Active:  "add",
		Session: sess,
		Flash:   msgExpenseAdded,
		Data:    s.newExpenseData(),
	})
}

// chartRow is one bar of the month-wise chart; Width is a percentage of
// the largest category.
type chartRow struct {
	Category core.Category
	Amount   core.Money
	Width    int
}

// chartRows scales each category total against the largest one.
func chartRows(summary core.MonthSummary) []chartRow {
	max := summary.MaxCategory()
	rows := make([]chartRow, 0, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		rows = append(rows, chartRow{Category: c.Category, Amount: c.Amount, Width: core.BarWidth(c.Amount, max)})
	}
	return rows
}

type monthOption struct {
	Value    int
	Label    string
	Selected bool
}

type monthlyData struct {
	Months  []monthOption
	Years   []monthOption
	Summary core.MonthSummary
	Chart   []chartRow
	Empty   string
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	now := s.now()
	params := ParseMonthParams(r.URL.Query(), now)

	summary, err := s.expenses.MonthSummary(ctx, sess.User(), params.Month, params.Year)
	if err != nil {
		s.events.LogError(ctx, "Month summary failed", err, applog.ComponentExpense, applog.OpList,
			applog.NewFields().WithUser(sess.UserID, sess.Username).WithPeriod(params.Year, params.Month))
		http.Error(w, "Failed to load expenses.", http.StatusInternalServerError)
		return
	}

	data := monthlyData{Summary: summary, Chart: chartRows(summary)}
	for m := 1; m <= 12; m++ {
		data.Months = append(data.Months, monthOption{Value: m, Label: core.MonthName(m), Selected: m == params.Month})
	}
	years := core.SelectableYears(now)
	if params.Year < years[0] || params.Year > years[len(years)-1] {
		years = append([]int{params.Year}, years...)
	}
	for _, y := range years {
		data.Years = append(data.Years, monthOption{Value: y, Label: strconv.Itoa(y), Selected: y == params.Year})
	}
	if len(summary.Expenses) == 0 {
		data.Empty = msgNoExpenses
	}

	s.render(w, r, http.StatusOK, "monthly.html", page{
		Title:   "Monthly Expense Overview",
		Active:  "monthly",
		Session: sess,
		Data:    data,
	})
}

// handleExport streams the selected month as an XLSX workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	params := ParseMonthParams(r.URL.Query(), s.now())
	fields := applog.NewFields().WithUser(sess.UserID, sess.Username).WithPeriod(params.Year, params.Month)

	summary, err := s.expenses.MonthSummary(ctx, sess.User(), params.Month, params.Year)
	if err != nil {
		s.events.LogError(ctx, "Export query failed", err, applog.ComponentExport, applog.OpExport, fields)
		http.Error(w, "Failed to export expenses.", http.StatusInternalServerError)
		return
	}

	f, err := export.MonthWorkbook(summary)
	if err != nil {
		s.events.LogError(ctx, "Workbook build failed", err, applog.ComponentExport, applog.OpExport, fields)
		http.Error(w, "Failed to export expenses.", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.events.LogError(ctx, "Workbook write failed", err, applog.ComponentExport, applog.OpExport, fields)
		http.Error(w, "Failed to export expenses.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(params.Year, params.Month)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	summary, err := s.expenses.RemainingBudget(ctx, sess.User(), s.now())
	if err != nil {
		s.events.LogError(ctx, "Remaining budget failed", err, applog.ComponentExpense, applog.OpList,
			applog.NewFields().WithUser(sess.UserID, sess.Username))
		http.Error(w, "Failed to load budget.", http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, "budget.html", page{
		Title:   "Remaining Budget",
		Active:  "budget",
		Session: sess,
		Data:    summary,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "profile.html", page{
		Title:   "User Profile",
		Active:  "profile",
		Session: session.FromContext(r.Context()),
	})
}
