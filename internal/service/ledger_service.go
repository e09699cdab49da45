package service

import (
	"context"
	"fmt"
	"log/slog"

	"portafoglio/internal/amqp"
	"portafoglio/internal/core"
	"portafoglio/internal/ledger"
	applog "portafoglio/internal/log"
	"portafoglio/internal/storage"
)

// LedgerService applies ledger mutations and fans out the side effects:
// persistence to SQLite and change messages for the mirror worker. The
// in-memory Book is authoritative for the lifetime of the process; both
// side effects are best effort and their failures are logged, not returned.
type LedgerService struct {
	book       *ledger.Book
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(book *ledger.Book, storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		book:       book,
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// AddIncome credits the wallet and persists the new balance.
func (s *LedgerService) AddIncome(ctx context.Context, amount core.Money) (core.Money, error) {
	balance, err := s.book.AddIncome(amount)
	if err != nil {
		return core.Money{}, err
	}
	s.persistBalance(ctx)
	return balance, nil
}

// AddExpense records a new expense, persists the ledger and notifies the
// mirror worker.
func (s *LedgerService) AddExpense(ctx context.Context, d ledger.Draft) (core.Expense, error) {
	e, err := s.book.AddExpense(d)
	if err != nil {
		return core.Expense{}, err
	}
	s.persistAll(ctx)
	s.publish(ctx, amqp.NewChangeMessage(amqp.ChangeExpenseAdded, e.ID))
	return e, nil
}

// EditExpense replaces an expense wholesale, persists the ledger and
// notifies the mirror worker.
func (s *LedgerService) EditExpense(ctx context.Context, id string, d ledger.Draft) (core.Expense, error) {
	e, err := s.book.EditExpense(id, d)
	if err != nil {
		return core.Expense{}, err
	}
	s.persistAll(ctx)
	s.publish(ctx, amqp.NewChangeMessage(amqp.ChangeExpenseEdited, e.ID))
	return e, nil
}

// DeleteExpense removes an expense and refunds its amount. Unknown ids are
// a no-op; nothing is persisted or published for them.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) (removed bool) {
	e, ok := s.book.DeleteExpense(id)
	if !ok {
		return false
	}
	s.persistAll(ctx)
	s.publish(ctx, amqp.NewDeleteMessage(e))
	return true
}

// Snapshot returns the current read-only ledger view.
func (s *LedgerService) Snapshot() core.Snapshot {
	return s.book.Snapshot()
}

// Flush persists the full ledger state synchronously, for process exit.
func (s *LedgerService) Flush(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	snap := s.book.Snapshot()
	if err := s.storage.SaveBalance(ctx, snap.Balance); err != nil {
		return fmt.Errorf("flush balance: %w", err)
	}
	if err := s.storage.ReplaceExpenses(ctx, snap.Expenses); err != nil {
		return fmt.Errorf("flush expenses: %w", err)
	}
	return nil
}

func (s *LedgerService) persistBalance(ctx context.Context) {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveBalance(ctx, s.book.Balance()); err != nil {
		slog.ErrorContext(ctx, "Failed to persist balance", applog.FieldError, err)
	}
}

func (s *LedgerService) persistAll(ctx context.Context) {
	if s.storage == nil {
		return
	}
	snap := s.book.Snapshot()
	if err := s.storage.SaveBalance(ctx, snap.Balance); err != nil {
		slog.ErrorContext(ctx, "Failed to persist balance", applog.FieldError, err)
	}
	if err := s.storage.ReplaceExpenses(ctx, snap.Expenses); err != nil {
		slog.ErrorContext(ctx, "Failed to persist expenses", applog.FieldError, err)
	}
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change message",
			"kind", msg.Kind)
		return
	}
	if err := s.amqpClient.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"kind", msg.Kind,
			applog.FieldExpenseID, msg.ExpenseID,
			applog.FieldError, err)
	}
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
