// Package worker mirrors ledger changes into the backup spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portafoglio/internal/amqp"
	"portafoglio/internal/core"
	"portafoglio/internal/sheets"
)

// ExpenseReader reads expense rows referenced by change messages, plus the
// full list for reconcile passes.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
}

// Mirror is the spreadsheet side: append and remove rows, list what is
// mirrored.
type Mirror interface {
	sheets.RowAppender
	sheets.RowRemover
	sheets.IDLister
}

// MirrorWorker consumes ledger change messages and keeps the spreadsheet
// mirror in step with SQLite. Edits are mirrored as remove-then-append so
// the sheet never holds two versions of the same record.
type MirrorWorker struct {
	storage ExpenseReader
	mirror  Mirror
}

func NewMirrorWorker(storage ExpenseReader, mirror Mirror) *MirrorWorker {
	return &MirrorWorker{
		storage: storage,
		mirror:  mirror,
	}
}

// HandleChange processes one change message. Returning an error requeues
// the message.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	switch msg.Kind {
	case amqp.ChangeExpenseAdded:
		return w.mirrorCurrent(ctx, msg.ExpenseID, false)
	case amqp.ChangeExpenseEdited:
		return w.mirrorCurrent(ctx, msg.ExpenseID, true)
	case amqp.ChangeExpenseDeleted:
		return w.removeRow(ctx, msg.Expense())
	default:
		slog.WarnContext(ctx, "Unknown change kind, dropping message",
			"kind", msg.Kind,
			"expense_id", msg.ExpenseID)
		return nil
	}
}

func (w *MirrorWorker) mirrorCurrent(ctx context.Context, id string, replace bool) error {
	e, err := w.storage.GetExpense(ctx, id)
	if errors.Is(err, core.ErrExpenseNotFound) {
		// Deleted (or rolled back) before the message was consumed.
		slog.WarnContext(ctx, "Expense vanished before mirroring, skipping",
			"expense_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload expense %s: %w", id, err)
	}

	if replace {
		if err := w.mirror.Remove(ctx, e); err != nil {
			return fmt.Errorf("remove stale row for %s: %w", id, err)
		}
	}

	ref, err := w.mirror.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("append row for %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		"expense_id", id,
		"row_ref", ref)

	return nil
}

func (w *MirrorWorker) removeRow(ctx context.Context, e core.Expense) error {
	if err := w.mirror.Remove(ctx, e); err != nil {
		return fmt.Errorf("remove row for %s: %w", e.ID, err)
	}
	return nil
}

// Reconcile converges the spreadsheet with SQLite in one pass: expenses
// missing from the sheet are appended, rows whose expense no longer exists
// are removed. It catches changes whose messages were lost or handled while
// the sheet was unreachable.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	expenses, err := w.storage.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	mirroredIDs, err := w.mirror.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list mirrored ids: %w", err)
	}

	mirrored := make(map[string]bool, len(mirroredIDs))
	for _, id := range mirroredIDs {
		mirrored[id] = true
	}
	want := make(map[string]bool, len(expenses))
	for _, e := range expenses {
		want[e.ID] = true
	}

	var appended, removed int
	for _, e := range expenses {
		if mirrored[e.ID] {
			continue
		}
		if _, err := w.mirror.Append(ctx, e); err != nil {
			return fmt.Errorf("reconcile append %s: %w", e.ID, err)
		}
		appended++
	}
	for _, id := range mirroredIDs {
		if want[id] {
			continue
		}
		if err := w.mirror.Remove(ctx, core.Expense{ID: id}); err != nil {
			return fmt.Errorf("reconcile remove %s: %w", id, err)
		}
		removed++
	}

	if appended > 0 || removed > 0 {
		slog.InfoContext(ctx, "Reconciled spreadsheet mirror",
			"appended", appended,
			"removed", removed)
	}
	return nil
}
