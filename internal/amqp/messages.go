package amqp

import (
	"encoding/json"
	"time"

	"portafoglio/internal/core"
)

const (
	ChangeExpenseAdded   = "expense_added"
	ChangeExpenseEdited  = "expense_edited"
	ChangeExpenseDeleted = "expense_deleted"
)

// ChangeMessage tells the mirror worker that one expense changed. For adds
// and edits it carries only the id; the worker re-reads the row from SQLite.
// Deletions carry the removed fields too, since the row is already gone by
// the time the worker sees the message.
type ChangeMessage struct {
	Kind        string    `json:"kind"`
	ExpenseID   string    `json:"expense_id"`
	Title       string    `json:"title,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Category    string    `json:"category,omitempty"`
	SpentOn     string    `json:"spent_on,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewChangeMessage creates an add/edit message referencing an expense by id.
func NewChangeMessage(kind, expenseID string) *ChangeMessage {
	return &ChangeMessage{
		Kind:      kind,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a delete message carrying the removed record.
func NewDeleteMessage(e core.Expense) *ChangeMessage {
	return &ChangeMessage{
		Kind:        ChangeExpenseDeleted,
		ExpenseID:   e.ID,
		Title:       e.Title,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		SpentOn:     e.Date.String(),
		Timestamp:   time.Now(),
	}
}

// Expense rebuilds the removed record embedded in a delete message.
func (m *ChangeMessage) Expense() core.Expense {
	d, _ := core.ParseDate(m.SpentOn)
	return core.Expense{
		ID:       m.ExpenseID,
		Title:    m.Title,
		Amount:   core.Money{Cents: m.AmountCents},
		Category: core.Category(m.Category),
		Date:     d,
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
