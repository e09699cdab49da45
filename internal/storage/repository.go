package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"portafoglio/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistence boundary of the ledger: loaded once at
// startup, written after every successful mutation. The in-memory Book stays
// authoritative; a write failure here is logged by the caller, never fatal.
type SQLiteRepository struct {
	db *sql.DB
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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the persisted wallet state. found is false when no balance row
// has ever been saved; callers fall back to the configured opening balance.
func (r *SQLiteRepository) Load(ctx context.Context) (balance core.Money, expenses []core.Expense, found bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT balance_cents FROM wallet WHERE id = 1`).Scan(&balance.Cents)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.Money{}, nil, false, nil
	case err != nil:
		return core.Money{}, nil, false, fmt.Errorf("load balance: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount_cents, category, spent_on FROM expenses ORDER BY position ASC`)
	if err != nil {
		return core.Money{}, nil, false, fmt.Errorf("load expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       core.Expense
			spentOn string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount.Cents, &e.Category, &spentOn); err != nil {
			return core.Money{}, nil, false, fmt.Errorf("scan expense: %w", err)
		}
		d, err := core.ParseDate(spentOn)
		if err != nil {
			return core.Money{}, nil, false, fmt.Errorf("expense %s: bad spent_on %q", e.ID, spentOn)
		}
		e.Date = d
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return core.Money{}, nil, false, fmt.Errorf("iterate expenses: %w", err)
	}

	slog.InfoContext(ctx, "Ledger state loaded",
		"balance_cents", balance.Cents,
		"expenses", len(expenses))

	return balance, expenses, true, nil
}

// SaveBalance upserts the single wallet row.
func (r *SQLiteRepository) SaveBalance(ctx context.Context, balance core.Money) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet (id, balance_cents, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET balance_cents = excluded.balance_cents, updated_at = CURRENT_TIMESTAMP`,
		balance.Cents)
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

// ReplaceExpenses rewrites the expense table from the given newest-first
// list in one transaction. Full rewrite keeps the persisted order exactly in
// step with the in-memory list without tracking individual diffs.
func (r *SQLiteRepository) ReplaceExpenses(ctx context.Context, expenses []core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for i, e := range expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, position, title, amount_cents, category, spent_on) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Title, e.Amount.Cents, string(e.Category), e.Date.String())
		if err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expenses: %w", err)
	}
	return nil
}

// ListExpenses returns every persisted expense in stored order. The mirror
// worker reconciles the spreadsheet against this list.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount_cents, category, spent_on FROM expenses ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			spentOn string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount.Cents, &e.Category, &spentOn); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d, err := core.ParseDate(spentOn)
		if err != nil {
			return nil, fmt.Errorf("expense %s: bad spent_on %q", e.ID, spentOn)
		}
		e.Date = d
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// GetExpense retrieves a single expense by ID. The mirror worker uses this
// to re-read a row referenced by a change message.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	var (
		e       core.Expense
		spentOn string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, amount_cents, category, spent_on FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.Title, &e.Amount.Cents, &e.Category, &spentOn)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.Expense{}, core.ErrExpenseNotFound
	case err != nil:
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	d, err := core.ParseDate(spentOn)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: bad spent_on %q", id, spentOn)
	}
	e.Date = d
	return e, nil
}
