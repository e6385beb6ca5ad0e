package amqp

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage is published when a user's month total exceeds the
// monthly budget.
type BudgetAlertMessage struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	ExpenseID   int64     `json:"expense_id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	BudgetCents int64     `json:"budget_cents"`
	TotalCents  int64     `json:"total_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// OverageCents is how far the month total is above the budget.
func (m *BudgetAlertMessage) OverageCents() int64 {
	return m.TotalCents - m.BudgetCents
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
