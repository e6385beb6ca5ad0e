package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

var ErrUserNotFound = errors.New("user not found")

// UserRecord is a stored user together with its credential hash.
type UserRecord struct {
	User         core.User
	PasswordHash string
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RegisterUser inserts a new user. Usernames are not checked for duplicates.
func (r *SQLiteRepository) RegisterUser(ctx context.Context, username, passwordHash string, budget core.Money) (core.User, error) {
	u, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		PasswordHash: passwordHash,
		BudgetCents:  budget.Cents,
	})
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "id", u.ID, "username", u.Username)
	return toCoreUser(u), nil
}

// FindUsersByUsername returns every user with that username, oldest first.
func (r *SQLiteRepository) FindUsersByUsername(ctx context.Context, username string) ([]UserRecord, error) {
	rows, err := r.queries.ListUsersByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list users by username: %w", err)
	}

	out := make([]UserRecord, len(rows))
	for i, u := range rows {
		out[i] = UserRecord{User: toCoreUser(u), PasswordHash: u.PasswordHash}
	}
	return out, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return toCoreUser(u), nil
}

// AddExpense stores e for e.UserID and returns it with its generated ID.
func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		UserID:      e.UserID,
		Category:    string(e.Category),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.String(),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"category", row.Category,
		"amount_cents", row.AmountCents,
		"date", row.Date)

	return toCoreExpense(row)
}

// GetExpenses returns the user's expenses whose date falls in month/year,
// ordered by date.
func (r *SQLiteRepository) GetExpenses(ctx context.Context, userID int64, month, year int) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesByMonth(ctx, ListExpensesByMonthParams{
		UserID: userID,
		Month:  fmt.Sprintf("%02d", month),
		// strftime('%Y') is always four digits
		Year: fmt.Sprintf("%04d", year),
	})
	if err != nil {
		return nil, fmt.Errorf("get expenses for %d-%02d: %w", year, month, err)
	}

	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toCoreExpense(row)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:       u.ID,
		Username: u.Username,
		Budget:   core.Money{Cents: u.BudgetCents},
	}
}

func toCoreExpense(row Expense) (core.Expense, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", row.ID, err)
	}
	return core.Expense{
		ID:          row.ID,
		UserID:      row.UserID,
		Category:    core.Category(row.Category),
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Date:        d,
	}, nil
}
