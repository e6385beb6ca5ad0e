package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// User mirrors a row of the users table.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	BudgetCents  int64
	CreatedAt    time.Time
}

// Expense mirrors a row of the expenses table.
type Expense struct {
	ID          int64
	UserID      int64
	Category    string
	Description string
	AmountCents int64
	Date        string
	CreatedAt   time.Time
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (username, password_hash, budget_cents)
VALUES (?, ?, ?)
RETURNING id, username, password_hash, budget_cents, created_at
`

type CreateUserParams struct {
	Username     string
	PasswordHash string
	BudgetCents  int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.PasswordHash, arg.BudgetCents)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.BudgetCents,
		&i.CreatedAt,
	)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, username, password_hash, budget_cents, created_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.BudgetCents,
		&i.CreatedAt,
	)
	return i, err
}

const listUsersByUsername = `-- name: ListUsersByUsername :many
SELECT id, username, password_hash, budget_cents, created_at
FROM users
WHERE username = ?
ORDER BY id
`

func (q *Queries) ListUsersByUsername(ctx context.Context, username string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsersByUsername, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.PasswordHash,
			&i.BudgetCents,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (user_id, category, description, amount_cents, date)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, category, description, amount_cents, date, created_at
`

type CreateExpenseParams struct {
	UserID      int64
	Category    string
	Description string
	AmountCents int64
	Date        string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID,
		arg.Category,
		arg.Description,
		arg.AmountCents,
		arg.Date,
	)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Description,
		&i.AmountCents,
		&i.Date,
		&i.CreatedAt,
	)
	return i, err
}

const listExpensesByMonth = `-- name: ListExpensesByMonth :many
SELECT id, user_id, category, description, amount_cents, date, created_at
FROM expenses
WHERE user_id = ?
  AND strftime('%m', date) = ?
  AND strftime('%Y', date) = ?
ORDER BY date, id
`

type ListExpensesByMonthParams struct {
	UserID int64
	Month  string
	Year   string
}

func (q *Queries) ListExpensesByMonth(ctx context.Context, arg ListExpensesByMonthParams) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByMonth, arg.UserID, arg.Month, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Category,
			&i.Description,
			&i.AmountCents,
			&i.Date,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
