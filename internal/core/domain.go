package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Travel        Category = "Travel"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
	Other         Category = "Other"
)

type (
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is one transaction record. Records are replaced wholesale on
	// edit: the ID stays, every other field comes from the caller.
	Expense struct {
		ID       string
		Title    string
		Amount   Money
		Category Category
		Date     Date
	}

	// Snapshot is a read-only, point-in-time view of the ledger: the wallet
	// balance and the expense list, newest first.
	Snapshot struct {
		Balance  Money
		Expenses []Expense
	}

	// CategoryAmount is an amount aggregated under one category.
	CategoryAmount struct {
		Category Category
		Amount   Money
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyTitle        = errors.New("empty title")
	ErrTitleTooLong      = errors.New("title too long (max 200 characters)")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrExpenseNotFound   = errors.New("expense not found")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Food, Travel, Shopping, Bills, Entertainment, Other}
}

// ParseCategory maps a user-supplied string onto the fixed category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Category) Validate() error {
	switch c {
	case Food, Travel, Shopping, Bills, Entertainment, Other:
		return nil
	}
	return ErrInvalidCategory
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	return e.Date.Validate()
}
