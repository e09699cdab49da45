package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCategoryValidate(t *testing.T) {
	for _, c := range Categories() {
		if err := c.Validate(); err != nil {
			t.Fatalf("%q expected ok, got %v", c, err)
		}
	}
	for _, c := range []Category{"", "food", "Groceries", " Travel"} {
		if err := c.Validate(); !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("%q expected ErrInvalidCategory, got %v", c, err)
		}
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Travel ")
	if err != nil || c != Travel {
		t.Fatalf("expected Travel, got %q (err=%v)", c, err)
	}
	if _, err := ParseCategory("Vacation"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-02")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-01-02" {
		t.Fatalf("round trip mismatch: %q", d.String())
	}
	for _, s := range []string{"", "2024-13-01", "02/01/2024", "yesterday"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:    "Lunch",
		Amount:   Money{Cents: 2000},
		Category: Food,
		Date:     NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"empty title", Expense{Title: " ", Amount: Money{Cents: 1}, Category: Food, Date: NewDate(2024, 1, 1)}, ErrEmptyTitle},
		{"title too long", Expense{Title: strings.Repeat("x", 201), Amount: Money{Cents: 1}, Category: Food, Date: NewDate(2024, 1, 1)}, ErrTitleTooLong},
		{"zero amount", Expense{Title: "a", Amount: Money{Cents: 0}, Category: Food, Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{"negative amount", Expense{Title: "a", Amount: Money{Cents: -5}, Category: Food, Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{"bad category", Expense{Title: "a", Amount: Money{Cents: 1}, Category: "Stuff", Date: NewDate(2024, 1, 1)}, ErrInvalidCategory},
		{"zero date", Expense{Title: "a", Amount: Money{Cents: 1}, Category: Food, Date: Date{Time: time.Time{}}}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
