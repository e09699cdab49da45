// Package ledger keeps the wallet balance and the expense list reconciled.
//
// The Book is the single consistency domain: every mutation validates fully
// before touching state, and the balance and list changes commit together or
// not at all. There is no I/O here; persistence and messaging hang off the
// service layer.
package ledger

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"portafoglio/internal/core"
)

// Draft carries the caller-supplied fields of an expense. IDs are never
// accepted from callers; the Book allocates them.
type Draft struct {
	Title    string
	Amount   core.Money
	Category core.Category
	Date     core.Date
}

func (d Draft) expense() core.Expense {
	return core.Expense{
		Title:    d.Title,
		Amount:   d.Amount,
		Category: d.Category,
		Date:     d.Date,
	}
}

// Book owns the authoritative in-memory ledger state. A single mutex guards
// the (balance, expenses) pair; partial visibility of one without the other
// would break the balance invariant.
type Book struct {
	mu       sync.Mutex
	balance  core.Money
	expenses []core.Expense // newest first
	newID    func() string
}

// NewBook restores a Book from a persisted balance and expense list, or
// starts fresh from an opening balance and no expenses.
func NewBook(balance core.Money, expenses []core.Expense) *Book {
	b := &Book{
		balance: balance,
		newID:   uuid.NewString,
	}
	b.expenses = append(b.expenses, expenses...)
	return b
}

// AddIncome credits the wallet. The amount must be strictly positive and
// must not overflow the balance.
func (b *Book) AddIncome(amount core.Money) (core.Money, error) {
	if err := amount.Validate(); err != nil {
		return core.Money{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balance.Cents > math.MaxInt64-amount.Cents {
		return core.Money{}, core.ErrInvalidAmount
	}
	b.balance.Cents += amount.Cents
	return b.balance, nil
}

// AddExpense validates the draft, allocates a fresh ID, prepends the record
// and debits the balance as one atomic step. Drafts that would drive the
// balance negative are rejected with core.ErrInsufficientFunds and leave
// state untouched.
func (b *Book) AddExpense(d Draft) (core.Expense, error) {
	e := d.expense()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if e.Amount.Cents > b.balance.Cents {
		return core.Expense{}, core.ErrInsufficientFunds
	}
	e.ID = b.newID()
	b.expenses = append([]core.Expense{e}, b.expenses...)
	b.balance.Cents -= e.Amount.Cents
	return e, nil
}

// EditExpense replaces the record with the given ID wholesale, keeping its
// list position, and moves the balance by the price difference. The edit is
// rejected in full when the ID is unknown, a field is invalid, or the
// adjusted balance would go negative.
func (b *Book) EditExpense(id string, d Draft) (core.Expense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	next := d.expense()
	next.ID = id
	if err := next.Validate(); err != nil {
		return core.Expense{}, err
	}
	tentative := b.balance.Cents + b.expenses[i].Amount.Cents - next.Amount.Cents
	if tentative < 0 {
		return core.Expense{}, core.ErrInsufficientFunds
	}
	b.expenses[i] = next
	b.balance.Cents = tentative
	return next, nil
}

// DeleteExpense removes the record and refunds its amount atomically.
// Deleting an ID that is not in the ledger is a benign no-op: the second
// return value reports whether anything was removed.
func (b *Book) DeleteExpense(id string) (core.Expense, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	removed := b.expenses[i]
	b.expenses = append(b.expenses[:i], b.expenses[i+1:]...)
	b.balance.Cents += removed.Amount.Cents
	return removed, true
}

// Snapshot returns the current (balance, expenses) pair. The expense slice
// is a copy; callers cannot reach the Book's internals through it.
func (b *Book) Snapshot() core.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Expense, len(b.expenses))
	copy(out, b.expenses)
	return core.Snapshot{Balance: b.balance, Expenses: out}
}

// Balance returns the current wallet balance.
func (b *Book) Balance() core.Money {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance
}

func (b *Book) indexOf(id string) int {
	for i, e := range b.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
