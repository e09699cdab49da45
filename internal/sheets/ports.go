package sheets

import (
	"context"

	"portafoglio/internal/core"
)

// Ports for the spreadsheet mirror. The mirror is a best-effort backup of
// the expense list driven by the worker; the ledger itself never blocks on
// it.
type (
	// RowAppender writes one expense as a new spreadsheet row.
	RowAppender interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// RowRemover removes the mirrored row whose id column matches the
	// expense.
	RowRemover interface {
		Remove(ctx context.Context, e core.Expense) error
	}

	// IDLister reports the expense ids currently mirrored, top to bottom.
	IDLister interface {
		ListIDs(ctx context.Context) ([]string, error)
	}
)
